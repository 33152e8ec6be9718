package backend

import "sync"

// Fake protocol engines shared by the backend tests.

type fakeHLSEngine struct {
	mu             sync.Mutex
	loads          []string
	netRecovers    int
	mediaRecovers  int
	recoverNetErr  error
	recoverMedErr  error
	destroyed      bool
	levels         []QualityLevel
	currentLevel   int
	setLevelCalls  []int
	subs           []func(EngineEvent)
}

func (f *fakeHLSEngine) LoadSource(locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, locator)
	return nil
}

func (f *fakeHLSEngine) RecoverNetworkError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.netRecovers++
	return f.recoverNetErr
}

func (f *fakeHLSEngine) RecoverMediaError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaRecovers++
	return f.recoverMedErr
}

func (f *fakeHLSEngine) Levels() []QualityLevel { return f.levels }
func (f *fakeHLSEngine) CurrentLevel() int      { return f.currentLevel }

func (f *fakeHLSEngine) SetLevel(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLevelCalls = append(f.setLevelCalls, index)
	f.currentLevel = index
}

func (f *fakeHLSEngine) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = true
}

func (f *fakeHLSEngine) Subscribe(fn func(EngineEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeHLSEngine) emit(ev EngineEvent) {
	f.mu.Lock()
	subs := append([]func(EngineEvent){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

type fakeDASHEngine struct {
	mu        sync.Mutex
	inits     []DASHEngineConfig
	locators  []string
	liveDelay float64
	destroyed bool
	subs      []func(EngineEvent)
}

func (f *fakeDASHEngine) Initialize(locator string, cfg DASHEngineConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locators = append(f.locators, locator)
	f.inits = append(f.inits, cfg)
	return nil
}

func (f *fakeDASHEngine) SetLiveDelay(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveDelay = seconds
}

func (f *fakeDASHEngine) Levels() []QualityLevel { return nil }
func (f *fakeDASHEngine) CurrentLevel() int      { return -1 }
func (f *fakeDASHEngine) SetLevel(int)           {}

func (f *fakeDASHEngine) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = true
}

func (f *fakeDASHEngine) Subscribe(fn func(EngineEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeDASHEngine) emit(ev EngineEvent) {
	f.mu.Lock()
	subs := append([]func(EngineEvent){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

type fakeFLVEngine struct {
	mu      sync.Mutex
	opens   []string
	openErr error
	closed  bool
	subs    []func(EngineEvent)
}

func (f *fakeFLVEngine) Open(locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens = append(f.opens, locator)
	return f.openErr
}

func (f *fakeFLVEngine) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeFLVEngine) Subscribe(fn func(EngineEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeFLVEngine) emit(ev EngineEvent) {
	f.mu.Lock()
	subs := append([]func(EngineEvent){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (f *fakeFLVEngine) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opens)
}
