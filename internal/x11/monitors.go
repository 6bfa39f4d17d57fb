package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display driven by one CRTC.
type Monitor struct {
	ID          int
	Name        string // RandR output name, e.g. DP-1
	X           int
	Y           int
	Width       int
	Height      int
	RefreshRate float64
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitor := Monitor{
			ID:     i,
			Name:   string(outputInfo.Name),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		if mi, ok := findMode(resources.Modes, crtcInfo.Mode); ok {
			monitor.RefreshRate = modeRefresh(mi)
		}
		monitors = append(monitors, monitor)
	}

	return monitors, nil
}

func findMode(modes []randr.ModeInfo, id randr.Mode) (randr.ModeInfo, bool) {
	for _, mi := range modes {
		if randr.Mode(mi.Id) == id {
			return mi, true
		}
	}
	return randr.ModeInfo{}, false
}

// modeRefresh derives the vertical refresh rate of mi in Hz.
func modeRefresh(mi randr.ModeInfo) float64 {
	if mi.Htotal == 0 || mi.Vtotal == 0 {
		return 0
	}
	vtotal := float64(mi.Vtotal)
	if mi.ModeFlags&randr.ModeFlagDoubleScan != 0 {
		vtotal *= 2
	}
	if mi.ModeFlags&randr.ModeFlagInterlace != 0 {
		vtotal /= 2
	}
	return float64(mi.DotClock) / (float64(mi.Htotal) * vtotal)
}
