// SPDX-License-Identifier: MIT

// Package errclass classifies raw playback errors into a coarse taxonomy.
// Classification is advisory: it drives user-facing suggestion strings and
// never blocks retry logic.
package errclass

import "strings"

// Kind is the classified error category.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindFormat    Kind = "format"
	KindCors      Kind = "cors"
	KindNotFound  Kind = "not_found"
	KindForbidden Kind = "forbidden"
	KindUnknown   Kind = "unknown"
)

// rules are substring heuristics, checked in order; first match wins.
var rules = []struct {
	needles []string
	kind    Kind
}{
	{[]string{"cors", "cross-origin", "access-control"}, KindCors},
	{[]string{"404", "not found"}, KindNotFound},
	{[]string{"403", "forbidden", "access denied"}, KindForbidden},
	{[]string{"decode", "unsupported", "demux", "codec", "format"}, KindFormat},
	{[]string{"network", "timeout", "timed out", "connection", "dns", "fetch"}, KindNetwork},
}

var suggestions = map[Kind]string{
	KindNetwork:   "check the network connection and retry",
	KindFormat:    "the media format or codec is not supported by this device",
	KindCors:      "the media server does not allow cross-origin playback from this page",
	KindNotFound:  "the media address appears to be wrong or expired",
	KindForbidden: "access to this media is restricted; check credentials or region",
	KindUnknown:   "an unknown playback error occurred; retrying may help",
}

// Classify maps a raw error message to a Kind.
func Classify(message string) Kind {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(lower, n) {
				return r.kind
			}
		}
	}
	return KindUnknown
}

// Suggestion returns the user-facing hint for a kind.
func Suggestion(kind Kind) string {
	if s, ok := suggestions[kind]; ok {
		return s
	}
	return suggestions[KindUnknown]
}
