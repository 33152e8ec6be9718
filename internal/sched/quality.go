// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sched

import (
	"github.com/shuliangfu/video-player/internal/capability"
	"github.com/shuliangfu/video-player/internal/netstatus"
)

// ChooseQuality resolves the startup quality index for an adaptive backend
// with levelCount levels. A persisted viewer preference wins while it is
// still in range; otherwise the network-derived suggestion applies.
// -1 means automatic selection.
func ChooseQuality(persisted, levelCount int, snap netstatus.Snapshot) int {
	if persisted >= 0 && persisted < levelCount {
		return persisted
	}
	return capability.SuggestQualityIndex(levelCount, snap)
}
