package displayout

import (
	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/node"
	"github.com/1broseidon/displayout/internal/platform"
	"github.com/1broseidon/displayout/internal/portname"
)

// refreshMonitorList republishes the selectable monitors.
func (c *Controller) refreshMonitorList() {
	if c.host == nil {
		return
	}
	c.host.UpdateStringList(c.MonitorListName(), c.resolver.PossibleMonitors())
}

// RefreshMonitors republishes the selectable monitors after a display
// topology change.
func (c *Controller) RefreshMonitors() {
	c.refreshMonitorList()
}

// publishMonitor writes the lock's display string back to the Monitor pin.
func (c *Controller) publishMonitor() {
	s := portname.None
	if c.lockedPort != nil {
		s = c.resolver.PortToString(*c.lockedPort)
	}
	c.cfg.Monitor = s
	if c.host != nil {
		c.host.SetPinValue(c.id, PinMonitor, node.EncodeString(s))
	}
	c.refreshMonitorList()
}

// connected reports whether port resolves to a monitor the windowing
// system currently shows. Only connected ports may be locked.
func (c *Controller) connected(port customres.PortID) bool {
	_, ok := c.resolver.MonitorForPort(port)
	return ok
}

// lock pins the window to port.
func (c *Controller) lock(port customres.PortID) {
	c.lockedPort = &port
	if c.state == StateWindowedUnlocked {
		c.state = StateWindowedLocked
	}
}

// unlock releases the pin. It must not be called while a custom resolution
// is applied.
func (c *Controller) unlock() {
	c.lockedPort = nil
	if c.state == StateLockedFullscreen {
		c.setDecorated(true)
	}
	if c.state.HasWindow() {
		c.state = StateWindowedUnlocked
	}
}

// isWindowLocked reports whether external geometry changes are rejected.
func (c *Controller) isWindowLocked() bool {
	return c.customApplied && c.state == StateLockedFullscreen
}

func (c *Controller) lockedMonitor() (platform.Monitor, bool) {
	if c.lockedPort == nil {
		return platform.Monitor{}, false
	}
	return c.resolver.MonitorForPort(*c.lockedPort)
}

// windowPort returns the locked port, or the port of the monitor the window
// overlaps most.
func (c *Controller) windowPort() (customres.PortID, bool) {
	if c.lockedPort != nil {
		return *c.lockedPort, true
	}
	if c.window == nil {
		return customres.PortID{}, false
	}
	bounds, err := c.window.Bounds()
	if err != nil {
		c.logger.Warn("window bounds unavailable", "error", err)
		return customres.PortID{}, false
	}
	monitors, err := c.windowing.Monitors()
	if err != nil {
		c.logger.Warn("monitor enumeration failed", "error", err)
		return customres.PortID{}, false
	}
	m, ok := platform.BestMonitor(bounds, monitors)
	if !ok {
		return customres.PortID{}, false
	}
	return c.resolver.PortForMonitor(m)
}

func (c *Controller) setDecorated(decorated bool) {
	if c.window == nil || c.decorated == decorated {
		return
	}
	if err := c.window.SetDecorated(decorated); err != nil {
		c.logger.Warn("set decorations failed", "decorated", decorated, "error", err)
		return
	}
	c.decorated = decorated
}

// moveToMonitor places the window at the locked monitor's origin.
func (c *Controller) moveToMonitor() {
	if c.window == nil {
		return
	}
	m, ok := c.lockedMonitor()
	if !ok {
		c.logger.Warn("locked monitor not found")
		return
	}
	if err := c.window.SetPosition(m.Bounds.X, m.Bounds.Y); err != nil {
		c.logger.Warn("move window failed", "error", err)
	}
}

// enterFullscreen pins the window to its monitor, snaps it to the monitor's
// bounds and native mode and removes decorations.
func (c *Controller) enterFullscreen() {
	if c.window == nil {
		return
	}
	port, ok := c.windowPort()
	if !ok {
		c.logger.Error("fullscreen: monitor not found")
		return
	}
	m, ok := c.resolver.MonitorForPort(port)
	if !ok {
		c.logger.Error("fullscreen: monitor not found", "port", port)
		return
	}
	if c.lockedPort == nil {
		c.lock(port)
		c.publishMonitor()
	}
	if err := c.window.SetPosition(m.Bounds.X, m.Bounds.Y); err != nil {
		c.logger.Warn("move window failed", "error", err)
	}
	width, height := m.Mode.Width, m.Mode.Height
	if width <= 0 || height <= 0 {
		width, height = m.Bounds.Width, m.Bounds.Height
	}
	if err := c.window.SetSize(width, height); err != nil {
		c.logger.Warn("resize window failed", "error", err)
	}
	c.setDecorated(false)
	c.state = StateLockedFullscreen
}

func (c *Controller) leaveFullscreen() {
	if c.state != StateLockedFullscreen {
		return
	}
	c.setDecorated(true)
	c.state = StateWindowedLocked
}

// releaseLostLock drops a lock whose monitor disappeared instead of fighting
// the window system for it.
func (c *Controller) releaseLostLock() {
	c.logger.Warn("locked monitor lost, releasing lock", "port", c.lockedPort)
	if c.customApplied {
		c.RevertMonitorResolution(true)
	}
	if c.lockedPort == nil {
		return
	}
	if c.customApplied {
		c.logger.Warn("abandoning custom resolution on lost monitor")
		c.customApplied = false
	}
	c.unlock()
	c.publishMonitor()
}

func (c *Controller) handleEvent(ev platform.Event) {
	switch e := ev.(type) {
	case platform.ResizeEvent:
		c.onResize(e)
	case platform.MoveEvent:
		c.onMove(e)
	case platform.IconifyEvent:
		if e.Iconified && c.isWindowLocked() {
			if err := c.window.Restore(); err != nil {
				c.logger.Warn("restore window failed", "error", err)
			}
		}
	case platform.CloseEvent:
		if c.isWindowLocked() {
			c.logger.Info("close rejected while window is locked")
			c.window.SetShouldClose(false)
		}
	}
}

func (c *Controller) onResize(e platform.ResizeEvent) {
	if c.isWindowLocked() {
		m, ok := c.lockedMonitor()
		if !ok {
			c.releaseLostLock()
			c.recreateSwapchain()
			return
		}
		onMonitor := e.Width == m.Bounds.Width && e.Height == m.Bounds.Height
		onRequest := uint32(e.Width) == c.cfg.Resolution.Width && uint32(e.Height) == c.cfg.Resolution.Height
		if !onMonitor && !onRequest {
			c.logger.Debug("snapping locked window back", "width", e.Width, "height", e.Height)
			if err := c.window.SetPosition(m.Bounds.X, m.Bounds.Y); err != nil {
				c.logger.Warn("move window failed", "error", err)
			}
			if err := c.window.SetSize(m.Bounds.Width, m.Bounds.Height); err != nil {
				c.logger.Warn("resize window failed", "error", err)
			}
			return
		}
	}
	c.recreateSwapchain()
}

func (c *Controller) onMove(e platform.MoveEvent) {
	if !c.isWindowLocked() {
		return
	}
	m, ok := c.lockedMonitor()
	if !ok {
		c.releaseLostLock()
		return
	}
	if e.X != m.Bounds.X || e.Y != m.Bounds.Y {
		c.logger.Debug("snapping locked window back", "x", e.X, "y", e.Y)
		if err := c.window.SetPosition(m.Bounds.X, m.Bounds.Y); err != nil {
			c.logger.Warn("move window failed", "error", err)
		}
	}
}
