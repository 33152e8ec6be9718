package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLoadAttempt(t *testing.T) {
	before := testutil.ToFloat64(LoadAttemptsTotal.WithLabelValues("hls", "ok"))
	RecordLoadAttempt("hls", "ok")
	after := testutil.ToFloat64(LoadAttemptsTotal.WithLabelValues("hls", "ok"))
	assert.Equal(t, before+1, after)
}

func TestAddBufferingSeconds_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(BufferingSecondsTotal)
	AddBufferingSeconds(-5)
	AddBufferingSeconds(0)
	assert.Equal(t, before, testutil.ToFloat64(BufferingSecondsTotal))

	AddBufferingSeconds(2.5)
	assert.Equal(t, before+2.5, testutil.ToFloat64(BufferingSecondsTotal))
}

func TestSetBackendStatus_OneHot(t *testing.T) {
	all := []string{"idle", "loading", "playing"}
	SetBackendStatus("loading", all)
	assert.Equal(t, 0.0, testutil.ToFloat64(BackendStatus.WithLabelValues("idle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(BackendStatus.WithLabelValues("loading")))
	assert.Equal(t, 0.0, testutil.ToFloat64(BackendStatus.WithLabelValues("playing")))

	SetBackendStatus("playing", all)
	assert.Equal(t, 0.0, testutil.ToFloat64(BackendStatus.WithLabelValues("loading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(BackendStatus.WithLabelValues("playing")))
}
