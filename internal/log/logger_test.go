package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilOutputIsDisabled(t *testing.T) {
	l := New(Config{})
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestNew_LevelAndServiceApplied(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf, Service: "player"})

	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "player", entry["service"])
}

func TestNewDynamic_LevelAdjustsAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	l, lv := NewDynamic(Config{Level: "info", Output: &buf})

	l.Debug().Msg("below minimum")
	assert.Zero(t, buf.Len())

	require.NoError(t, lv.SetString("debug"))
	l.Debug().Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])

	// Children derived before or after a change follow the shared level.
	buf.Reset()
	lv.Set(zerolog.ErrorLevel)
	child := WithComponent(l, "child")
	child.Warn().Msg("below minimum")
	assert.Zero(t, buf.Len())
}

func TestLevelVar_RejectsUnknownNames(t *testing.T) {
	lv := NewLevelVar(zerolog.InfoLevel)
	assert.Error(t, lv.SetString("chatty"))
	assert.Equal(t, zerolog.InfoLevel, lv.Level(), "a failed parse keeps the current level")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := WithComponent(New(Config{Output: &buf}), "factory")
	l.Info().Msg("hi")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "factory", entry["component"])
}
