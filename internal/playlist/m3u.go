// SPDX-License-Identifier: MIT
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseM3U reads an extended M3U document into playlist items. #EXTINF
// metadata lines set the title for the locator that follows; plain URL
// lists load as untitled items. Other comment lines are ignored.
func ParseM3U(r io.Reader) ([]Item, error) {
	scanner := bufio.NewScanner(r)
	var items []Item
	var title string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || line == "#EXTM3U":
			continue
		case strings.HasPrefix(line, "#EXTINF:"):
			// Display title is everything after the last comma.
			if idx := strings.LastIndex(line, ","); idx != -1 {
				title = strings.TrimSpace(line[idx+1:])
			}
		case strings.HasPrefix(line, "#"):
			continue
		default:
			items = append(items, Item{Locator: line, Title: title})
			title = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("playlist: read m3u: %w", err)
	}
	return items, nil
}

// WriteM3U renders items as an extended M3U document.
func WriteM3U(w io.Writer, items []Item) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return fmt.Errorf("playlist: write m3u: %w", err)
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(bw, "#EXTINF:-1,%s\n%s\n", it.Title, it.Locator); err != nil {
			return fmt.Errorf("playlist: write m3u: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("playlist: write m3u: %w", err)
	}
	return nil
}
