package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/displayout/internal/customres"
)

// Reduced-blanking defaults used when no template mode is available.
const (
	rbHFront = 48
	rbHSync  = 32
	rbHBack  = 80
	rbVFront = 3
	rbVSync  = 5
	rbVMin   = 23
)

// scaleTiming builds a timing for width x height at refresh Hz by scaling
// the blanking intervals of tpl. A zero template falls back to reduced
// blanking.
func scaleTiming(tpl randr.ModeInfo, width, height uint32, refresh float32) customres.Timing {
	var t customres.Timing
	if tpl.Width == 0 || tpl.Height == 0 || tpl.Htotal == 0 || tpl.Vtotal == 0 {
		t = customres.Timing{
			HVisible:   width,
			HSyncStart: width + rbHFront,
			HSyncEnd:   width + rbHFront + rbHSync,
			HTotal:     width + rbHFront + rbHSync + rbHBack,
			VVisible:   height,
			VSyncStart: height + rbVFront,
			VSyncEnd:   height + rbVFront + rbVSync,
			VTotal:     height + max(rbVMin, height/36),
		}
	} else {
		sx := float64(width) / float64(tpl.Width)
		sy := float64(height) / float64(tpl.Height)
		t = customres.Timing{
			HVisible:   width,
			HSyncStart: scale(tpl.HsyncStart, sx),
			HSyncEnd:   scale(tpl.HsyncEnd, sx),
			HTotal:     scale(tpl.Htotal, sx),
			VVisible:   height,
			VSyncStart: scale(tpl.VsyncStart, sy),
			VSyncEnd:   scale(tpl.VsyncEnd, sy),
			VTotal:     scale(tpl.Vtotal, sy),
			Flags:      tpl.ModeFlags &^ (randr.ModeFlagInterlace | randr.ModeFlagDoubleScan),
		}
		// Rounding must not collapse the sync pulse or the porches.
		t.HSyncStart = max(t.HSyncStart, width+1)
		t.HSyncEnd = max(t.HSyncEnd, t.HSyncStart+1)
		t.HTotal = max(t.HTotal, t.HSyncEnd+1)
		t.VSyncStart = max(t.VSyncStart, height+1)
		t.VSyncEnd = max(t.VSyncEnd, t.VSyncStart+1)
		t.VTotal = max(t.VTotal, t.VSyncEnd+1)
	}
	t.PixelClock = uint64(math.Round(float64(t.HTotal) * float64(t.VTotal) * float64(refresh)))
	return t
}

func scale(v uint16, f float64) uint32 {
	return uint32(math.Round(float64(v) * f))
}

// checkModeRange reports whether t fits the 16-bit timing fields and the
// 32-bit dot clock of a RandR mode.
func checkModeRange(t customres.Timing) error {
	for _, f := range []struct {
		name string
		v    uint32
	}{
		{"width", t.HVisible},
		{"hsync start", t.HSyncStart},
		{"hsync end", t.HSyncEnd},
		{"htotal", t.HTotal},
		{"height", t.VVisible},
		{"vsync start", t.VSyncStart},
		{"vsync end", t.VSyncEnd},
		{"vtotal", t.VTotal},
	} {
		if f.v > math.MaxUint16 {
			return fmt.Errorf("%s %d exceeds %d", f.name, f.v, math.MaxUint16)
		}
	}
	if t.PixelClock > math.MaxUint32 {
		return fmt.Errorf("pixel clock %d Hz exceeds %d", t.PixelClock, uint64(math.MaxUint32))
	}
	return nil
}

// modeInfo converts a timing into a RandR mode description named name. t
// must have passed checkModeRange.
func modeInfo(t customres.Timing, name string) randr.ModeInfo {
	return randr.ModeInfo{
		Width:      uint16(t.HVisible),
		Height:     uint16(t.VVisible),
		DotClock:   uint32(t.PixelClock),
		HsyncStart: uint16(t.HSyncStart),
		HsyncEnd:   uint16(t.HSyncEnd),
		Htotal:     uint16(t.HTotal),
		VsyncStart: uint16(t.VSyncStart),
		VsyncEnd:   uint16(t.VSyncEnd),
		Vtotal:     uint16(t.VTotal),
		NameLen:    uint16(len(name)),
		ModeFlags:  t.Flags,
	}
}
