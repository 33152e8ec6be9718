package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ExtensionTable(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    Tag
	}{
		{"hls", "https://cdn.example.com/master.m3u8", TagHLS},
		{"hls uppercase ext", "https://cdn.example.com/MASTER.M3U8", TagHLS},
		{"hls with query", "http://a/b.m3u8?token=abc", TagHLS},
		{"dash", "https://cdn.example.com/manifest.mpd", TagDASH},
		{"flv file", "https://cdn.example.com/clip.flv", TagFLV},
		{"mp4", "https://cdn.example.com/movie.mp4", TagProgressive},
		{"m4v", "file:///media/movie.m4v", TagProgressive},
		{"webm", "https://cdn.example.com/movie.webm", TagProgressive},
		{"ogg", "https://cdn.example.com/audio.ogg", TagProgressive},
		{"ogv", "https://cdn.example.com/clip.ogv", TagProgressive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.locator))
		})
	}
}

func TestClassify_SchemePrecedence(t *testing.T) {
	// rtmp wins even when the path would match the extension table.
	assert.Equal(t, TagRTMP, Classify("rtmp://live.example.com/app/stream.m3u8"))
	assert.Equal(t, TagRTMP, Classify("rtmps://live.example.com/app/key"))
	assert.Equal(t, TagRTMP, Classify("RTMP://live.example.com/app/key"))
}

func TestClassify_FLVLiveHint(t *testing.T) {
	// A flv path segment plus a live hint classifies before the extension table.
	assert.Equal(t, TagFLV, Classify("https://example.com/live/flv/channel1"))
	assert.Equal(t, TagFLV, Classify("https://example.com/stream/room.flv"))
	// flv in path without any live hint and without extension stays unknown.
	assert.Equal(t, TagUnknown, Classify("https://example.com/flvish/page"))
}

func TestClassify_AV1SubClassification(t *testing.T) {
	assert.Equal(t, TagAV1, Classify("https://example.com/movie.mp4?codec=av01.0.05M.08"))
	assert.Equal(t, TagAV1, Classify("https://example.com/av1/movie.webm"))
	// Non-AV1 codec hint stays progressive.
	assert.Equal(t, TagProgressive, Classify("https://example.com/movie.mp4?codec=avc1"))
	// AV1 hint on a non-upgradable container does not apply.
	assert.Equal(t, TagProgressive, Classify("https://example.com/av1/audio.ogg"))
}

func TestClassify_MIMEQueryFallback(t *testing.T) {
	tests := []struct {
		locator string
		want    Tag
	}{
		{"https://example.com/play?type=application/vnd.apple.mpegurl", TagHLS},
		{"https://example.com/play?type=application/x-mpegurl", TagHLS},
		{"https://example.com/play?type=application/dash%2Bxml", TagDASH},
		{"https://example.com/play?type=video/x-flv", TagFLV},
		{"https://example.com/play?type=video/mp4", TagProgressive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.locator), tt.locator)
	}
}

func TestClassify_TotalOnGarbage(t *testing.T) {
	assert.Equal(t, TagUnknown, Classify(""))
	assert.Equal(t, TagUnknown, Classify("   "))
	assert.Equal(t, TagUnknown, Classify("not a url at all"))
	// Unparsable locator still matches substring heuristics.
	assert.Equal(t, TagHLS, Classify("http://bad host/stream.m3u8"))
	assert.Equal(t, TagProgressive, Classify("http://bad host/clip.mp4"))
}

func TestTranslateRTMP(t *testing.T) {
	out, err := TranslateRTMP("rtmp://live.example.com/app/room42")
	require.NoError(t, err)
	assert.Equal(t, "http://live.example.com/app/room42.flv", out)

	out, err = TranslateRTMP("rtmps://live.example.com/app/room42.flv")
	require.NoError(t, err)
	assert.Equal(t, "https://live.example.com/app/room42.flv", out)
}

func TestTranslateRTMP_Failures(t *testing.T) {
	_, err := TranslateRTMP("http://example.com/already-http")
	assert.Error(t, err)

	_, err = TranslateRTMP("rtmp://")
	assert.Error(t, err)
}

func TestTag_JSONRoundTrip(t *testing.T) {
	for _, tag := range AllTags() {
		data, err := tag.MarshalJSON()
		require.NoError(t, err)
		var back Tag
		require.NoError(t, back.UnmarshalJSON(data))
		assert.Equal(t, tag, back)
	}

	var bad Tag
	assert.Error(t, bad.UnmarshalJSON([]byte(`"quic"`)))
}
