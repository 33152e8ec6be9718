// SPDX-License-Identifier: MIT

// Package format classifies source locators into delivery protocol tags and
// translates RTMP locators for HTTP-FLV gateways.
package format

import (
	"net/url"
	"path"
	"strings"
)

// extensionTags maps a lowercase path extension to its protocol tag.
// mp4/m4v/webm are classified progressive here; an AV1 codec hint upgrades
// them to TagAV1 in Classify.
var extensionTags = map[string]Tag{
	"m3u8": TagHLS,
	"mpd":  TagDASH,
	"flv":  TagFLV,
	"mp4":  TagProgressive,
	"m4v":  TagProgressive,
	"webm": TagProgressive,
	"ogg":  TagProgressive,
	"ogv":  TagProgressive,
}

// mimePrefixTags maps MIME prefixes found in a `type` query parameter to
// protocol tags, consulted only when no extension matched.
var mimePrefixTags = []struct {
	prefix string
	tag    Tag
}{
	{"application/vnd.apple.mpegurl", TagHLS},
	{"application/x-mpegurl", TagHLS},
	{"application/dash+xml", TagDASH},
	{"video/x-flv", TagFLV},
	{"video/mp4", TagProgressive},
	{"video/webm", TagProgressive},
	{"video/ogg", TagProgressive},
}

// av1 upgrade applies only to these container extensions.
var av1Containers = map[string]bool{"mp4": true, "webm": true}

// Classify maps a source locator to a protocol tag. It is total: unparsable
// locators fall back to substring heuristics and the worst case is
// TagUnknown, never an error.
//
// Precedence, first match wins:
//  1. rtmp(s):// scheme
//  2. "flv" path segment combined with a live/stream hint
//  3. exact path-extension table
//  4. AV1 sub-classification for mp4/webm extension matches
//  5. `type` query parameter against a MIME prefix table
//  6. TagUnknown
func Classify(locator string) Tag {
	lower := strings.ToLower(strings.TrimSpace(locator))
	if lower == "" {
		return TagUnknown
	}

	if strings.HasPrefix(lower, "rtmp://") || strings.HasPrefix(lower, "rtmps://") {
		return TagRTMP
	}

	u, err := url.Parse(lower)
	if err != nil {
		return classifySubstring(lower)
	}

	if strings.Contains(u.Path, "flv") && hasLiveHint(lower) {
		return TagFLV
	}

	if ext := strings.TrimPrefix(path.Ext(u.Path), "."); ext != "" {
		if tag, ok := extensionTags[ext]; ok {
			if tag == TagProgressive && av1Containers[ext] && hasAV1Hint(u) {
				return TagAV1
			}
			return tag
		}
	}

	if mime := u.Query().Get("type"); mime != "" {
		for _, entry := range mimePrefixTags {
			if strings.HasPrefix(mime, entry.prefix) {
				return entry.tag
			}
		}
	}

	return TagUnknown
}

// classifySubstring is the fallback for locators url.Parse rejects.
func classifySubstring(lower string) Tag {
	switch {
	case strings.Contains(lower, ".m3u8"):
		return TagHLS
	case strings.Contains(lower, ".mpd"):
		return TagDASH
	case strings.Contains(lower, ".flv"):
		return TagFLV
	case strings.Contains(lower, ".mp4"), strings.Contains(lower, ".webm"):
		return TagProgressive
	default:
		return TagUnknown
	}
}

func hasLiveHint(lower string) bool {
	return strings.Contains(lower, "live") || strings.Contains(lower, "stream")
}

// hasAV1Hint reports whether the locator carries an AV1 codec token, either
// in a `codec` query parameter or anywhere in the locator string.
func hasAV1Hint(u *url.URL) bool {
	if codec := strings.ToLower(u.Query().Get("codec")); codec != "" {
		return strings.Contains(codec, "av1") || strings.Contains(codec, "av01")
	}
	s := u.String()
	return strings.Contains(s, "av1") || strings.Contains(s, "av01")
}
