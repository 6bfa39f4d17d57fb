package displayout

import (
	"fmt"

	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/node"
	"github.com/1broseidon/displayout/internal/platform"
	"github.com/1broseidon/displayout/internal/portname"
	"github.com/1broseidon/displayout/internal/present"
)

// Pin names.
const (
	PinInput       = "Input"
	PinResolution  = "Resolution"
	PinFullscreen  = "Fullscreen"
	PinVSync       = "VSync"
	PinRefreshRate = "RefreshRate"
	PinMonitor     = "Monitor"
)

// Exported node functions.
const (
	FuncForceUpdateMonitorResolution = "ForceUpdateMonitorResolution"
	FuncRevertMonitorResolution      = "RevertMonitorResolution"
)

// PinChanged applies a new pin value. Undecodable values are logged and
// ignored.
func (c *Controller) PinChanged(pin string, raw []byte) {
	switch pin {
	case PinResolution:
		w, h, err := node.DecodeVec2u(raw)
		if err != nil {
			c.badPin(pin, err)
			return
		}
		c.setResolution(Resolution{Width: w, Height: h})
	case PinFullscreen:
		v, err := node.DecodeBool(raw)
		if err != nil {
			c.badPin(pin, err)
			return
		}
		c.setFullscreen(v)
	case PinVSync:
		v, err := node.DecodeBool(raw)
		if err != nil {
			c.badPin(pin, err)
			return
		}
		c.cfg.VSync = v
		if c.window != nil {
			c.recreateSwapchain()
		}
	case PinRefreshRate:
		v, err := node.DecodeFloat32(raw)
		if err != nil {
			c.badPin(pin, err)
			return
		}
		c.cfg.RefreshRate = v
		if c.customApplied {
			c.UpdateCustomResolution()
		}
	case PinMonitor:
		c.selectMonitor(node.DecodeString(raw))
	}
}

func (c *Controller) badPin(pin string, err error) {
	c.logger.Warn("invalid pin value", "pin", pin, "error", err)
}

func (c *Controller) setResolution(r Resolution) {
	if r.Width == 0 || r.Height == 0 {
		c.badPin(PinResolution, fmt.Errorf("zero size %dx%d", r.Width, r.Height))
		return
	}
	c.cfg.Resolution = r
	if c.window == nil {
		return
	}
	if err := c.window.SetSize(int(r.Width), int(r.Height)); err != nil {
		c.logger.Warn("resize window failed", "error", err)
	}
}

func (c *Controller) setFullscreen(v bool) {
	c.cfg.Fullscreen = v
	if c.window == nil {
		return
	}
	if v {
		c.enterFullscreen()
	} else {
		c.leaveFullscreen()
	}
}

// selectMonitor switches the lock to the port named by s. NONE leaves the
// current lock alone.
func (c *Controller) selectMonitor(s string) {
	if portname.IsNone(s) {
		return
	}
	port, err := portname.Parse(s)
	if err != nil {
		c.badPin(PinMonitor, err)
		return
	}
	if c.lockedPort != nil && *c.lockedPort == port {
		return
	}
	if !c.connected(port) {
		c.logger.Warn("ignoring monitor that is not connected", "monitor", s)
		c.publishMonitor()
		return
	}
	reapply := c.customApplied
	if reapply && !c.RevertMonitorResolution(false) {
		c.logger.Error("monitor change aborted: custom resolution could not be reverted")
		return
	}
	c.lock(port)
	c.cfg.Monitor = s
	c.refreshMonitorList()
	if c.state == StateLockedFullscreen {
		c.enterFullscreen()
	} else {
		c.moveToMonitor()
	}
	if reapply {
		c.UpdateCustomResolution()
	}
}

// Functions lists the callable node functions.
func (c *Controller) Functions() []string {
	return []string{FuncForceUpdateMonitorResolution, FuncRevertMonitorResolution}
}

// CallFunction runs an exported node function.
func (c *Controller) CallFunction(name string) error {
	switch name {
	case FuncForceUpdateMonitorResolution:
		if !c.UpdateCustomResolution() {
			return fmt.Errorf("%s: %w", name, ErrCustomMode)
		}
	case FuncRevertMonitorResolution:
		if !c.RevertMonitorResolution(true) {
			return fmt.Errorf("%s: %w", name, ErrCustomMode)
		}
	default:
		return fmt.Errorf("%q: %w", name, node.ErrUnknownFunction)
	}
	return nil
}

// Snapshot is a read-only view of a controller.
type Snapshot struct {
	NodeID        string            `json:"node_id"`
	State         string            `json:"state"`
	Locked        bool              `json:"locked"`
	LockedPort    string            `json:"locked_port,omitempty"`
	CustomApplied bool              `json:"custom_applied"`
	Monitor       string            `json:"monitor"`
	Request       string            `json:"request"`
	Resolution    Resolution        `json:"resolution"`
	RefreshRate   float32           `json:"refresh_rate"`
	Fullscreen    bool              `json:"fullscreen"`
	VSync         bool              `json:"vsync"`
	Window        *platform.Rect    `json:"window,omitempty"`
	Decorated     bool              `json:"decorated"`
	Extent        present.Extent    `json:"extent"`
	FrameCount    int               `json:"frame_count"`
	Frame         uint32            `json:"frame"`
	Port          *customres.PortID `json:"port,omitempty"`
}

// Snapshot reports the controller's current state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		NodeID:        c.id.String(),
		State:         c.state.String(),
		Locked:        c.lockedPort != nil,
		CustomApplied: c.customApplied,
		Monitor:       c.cfg.Monitor,
		Request:       c.request().String(),
		Resolution:    c.cfg.Resolution,
		RefreshRate:   c.cfg.RefreshRate,
		Fullscreen:    c.cfg.Fullscreen,
		VSync:         c.cfg.VSync,
		Decorated:     c.window != nil && c.decorated,
		Extent:        c.extent,
		FrameCount:    len(c.waitSems),
		Frame:         c.currentFrame,
	}
	if c.lockedPort != nil {
		port := *c.lockedPort
		s.Port = &port
		s.LockedPort = c.resolver.PortToString(port)
	}
	if c.window != nil {
		if b, err := c.window.Bounds(); err == nil {
			s.Window = &b
		}
	}
	return s
}
