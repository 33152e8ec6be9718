// SPDX-License-Identifier: MIT
package format

import (
	"encoding/json"
	"fmt"
)

// Tag identifies the delivery protocol classified for a source locator.
type Tag string

// Protocol tag constants cover every delivery mechanism the player routes.
const (
	// TagProgressive indicates plain progressive file delivery.
	TagProgressive Tag = "progressive"

	// TagHLS indicates HTTP Live Streaming manifests.
	TagHLS Tag = "hls"

	// TagDASH indicates MPEG-DASH manifests.
	TagDASH Tag = "dash"

	// TagFLV indicates HTTP-FLV live delivery.
	TagFLV Tag = "flv"

	// TagRTMP indicates an RTMP locator requiring gateway translation.
	TagRTMP Tag = "rtmp"

	// TagAV1 indicates a progressive source carrying an AV1 codec hint.
	TagAV1 Tag = "av1"

	// TagUnknown indicates no heuristic matched. Unknown never blocks
	// playback; the factory treats it exactly like TagProgressive.
	TagUnknown Tag = "unknown"
)

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}

// IsValid checks whether the tag is a defined value.
func (t Tag) IsValid() bool {
	switch t {
	case TagProgressive, TagHLS, TagDASH, TagFLV, TagRTMP, TagAV1, TagUnknown:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tag := Tag(s)
	if !tag.IsValid() {
		return fmt.Errorf("invalid protocol tag: %q", s)
	}
	*t = tag
	return nil
}

// AllTags returns all defined protocol tags.
func AllTags() []Tag {
	return []Tag{TagProgressive, TagHLS, TagDASH, TagFLV, TagRTMP, TagAV1, TagUnknown}
}
