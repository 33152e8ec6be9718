// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build go1.18

package playlist

import (
	"strings"
	"testing"
)

// FuzzParseM3U makes sure the parser never panics and every produced item
// carries a non-comment locator, whatever the input shape.
func FuzzParseM3U(f *testing.F) {
	f.Add("#EXTM3U\n#EXTINF:-1,Title\nhttps://cdn.example.com/a.mp4\n")
	f.Add("https://a.example/x.mp4\nhttps://b.example/y.flv\n")
	f.Add("#EXTINF:,\n#EXTINF:-1\nno-comma-extinf\n")
	f.Add("#EXTINF:-1,Тест Unicode\nrtsp://stream\n")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		items, err := ParseM3U(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ParseM3U failed on in-memory input: %v", err)
		}
		for _, it := range items {
			if it.Locator == "" {
				t.Error("item with empty locator")
			}
			if strings.HasPrefix(it.Locator, "#") {
				t.Errorf("comment line leaked as locator: %q", it.Locator)
			}
		}
	})
}
