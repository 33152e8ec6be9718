// SPDX-License-Identifier: MIT
package format

import (
	"fmt"
	"net/url"
	"strings"
)

// TranslatePolicy rewrites an RTMP locator to an HTTP-FLV locator. Gateways
// differ in their path conventions, so the translation is pluggable; the
// default is a best-effort heuristic, not a guaranteed protocol bridge.
type TranslatePolicy func(locator string) (string, error)

// TranslateRTMP is the default policy: substitute the scheme (rtmp→http,
// rtmps→https) and ensure the path carries a .flv suffix. Translation
// failure is a hard error and must not be swallowed by callers.
func TranslateRTMP(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("rtmp translate: parse %q: %w", locator, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "rtmp":
		u.Scheme = "http"
	case "rtmps":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("rtmp translate: unexpected scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return "", fmt.Errorf("rtmp translate: missing host in %q", locator)
	}

	if !strings.HasSuffix(strings.ToLower(u.Path), ".flv") {
		u.Path = strings.TrimSuffix(u.Path, "/") + ".flv"
	}

	return u.String(), nil
}
