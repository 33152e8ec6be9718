package errclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Kind
	}{
		{"CORS policy blocked the request", KindCors},
		{"HTTP 404 Not Found", KindNotFound},
		{"403 Forbidden", KindForbidden},
		{"cannot decode stream", KindFormat},
		{"unsupported codec av99", KindFormat},
		{"network request timed out", KindNetwork},
		{"connection refused", KindNetwork},
		{"something exploded", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.message), tt.message)
	}
}

func TestSuggestion_AlwaysNonEmpty(t *testing.T) {
	for _, k := range []Kind{KindNetwork, KindFormat, KindCors, KindNotFound, KindForbidden, KindUnknown, Kind("bogus")} {
		assert.NotEmpty(t, Suggestion(k))
	}
}
