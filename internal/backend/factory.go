// SPDX-License-Identifier: MIT
package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/format"
	"github.com/shuliangfu/video-player/internal/media"
)

// FactoryOptions configure backend selection and construction.
type FactoryOptions struct {
	Logger zerolog.Logger

	// FallbackToProgressive constructs the progressive backend when a
	// specialized backend fails to construct. When disabled, construction
	// errors propagate unchanged.
	FallbackToProgressive bool

	HLSEngine  HLSEngineFactory
	DASHEngine DASHEngineFactory
	FLVEngine  FLVEngineFactory

	DASH DASHOptions
	FLV  FLVOptions

	// TranslateRTMP rewrites RTMP locators for an HTTP-FLV gateway. Nil
	// selects the default heuristic policy.
	TranslateRTMP format.TranslatePolicy
}

// Result carries the constructed backend together with the locator it must
// load, which differs from the input for translated RTMP sources.
type Result struct {
	Backend Backend
	Tag     format.Tag
	Locator string
}

// Create classifies locator and instantiates the matching backend.
//
// Unknown classifies identically to progressive, and AV1-tagged locators
// route to progressive (native decode assumed capable; the capability
// advisor steers away from AV1 when unsupported). RTMP translation failure
// is a hard error regardless of the fallback flag.
func Create(surface media.Surface, locator string, opts FactoryOptions) (Result, error) {
	tag := format.Classify(locator)
	target := locator

	if tag == format.TagRTMP {
		translate := opts.TranslateRTMP
		if translate == nil {
			translate = format.TranslateRTMP
		}
		translated, err := translate(locator)
		if err != nil {
			return Result{}, fmt.Errorf("backend factory: %w", err)
		}
		target = translated
		tag = format.TagFLV
	}

	b, err := construct(surface, tag, opts)
	if err != nil {
		if !opts.FallbackToProgressive {
			return Result{}, err
		}
		opts.Logger.Warn().
			Err(err).
			Str("tag", tag.String()).
			Msg("backend construction failed, falling back to progressive")
		tag = format.TagProgressive
		b = NewProgressive(surface, opts.Logger)
	}

	return Result{Backend: b, Tag: tag, Locator: target}, nil
}

func construct(surface media.Surface, tag format.Tag, opts FactoryOptions) (Backend, error) {
	switch tag {
	case format.TagHLS:
		return NewHLS(surface, opts.HLSEngine, opts.Logger)
	case format.TagDASH:
		return NewDASH(surface, opts.DASHEngine, opts.DASH, opts.Logger)
	case format.TagFLV:
		return NewFLV(surface, opts.FLVEngine, opts.FLV, opts.Logger)
	default:
		// Progressive, AV1 and Unknown all take the native decode path.
		return NewProgressive(surface, opts.Logger), nil
	}
}
