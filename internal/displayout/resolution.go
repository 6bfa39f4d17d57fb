package displayout

// UpdateCustomResolution applies the configured resolution and refresh rate
// to the window's port and locks the window to it. An override already in
// place is reverted first; the lock is kept across that revert.
func (c *Controller) UpdateCustomResolution() bool {
	backend := c.backend()
	if backend == nil {
		c.logger.Error("custom resolution backend not available")
		return false
	}
	if c.window == nil {
		c.logger.Error("custom resolution: window not found")
		return false
	}
	port, ok := c.windowPort()
	if !ok {
		c.logger.Error("custom resolution: monitor not found")
		return false
	}
	if c.customApplied && !c.RevertMonitorResolution(false) {
		c.logger.Error("custom resolution: previous override could not be reverted")
		return false
	}

	req := c.request()
	if !backend.SetResolutionAndRefreshRate(port, req) {
		c.logger.Error("custom resolution failed", "port", port, "request", req)
		return false
	}
	c.customApplied = true
	c.lock(port)
	c.publishMonitor()
	c.logger.Info("custom resolution applied", "port", port, "request", req)
	return true
}

// RevertMonitorResolution restores the locked port's previous mode. With
// clearLock the window is also released from its monitor. It reports false
// when nothing was applied or the backend refused.
func (c *Controller) RevertMonitorResolution(clearLock bool) bool {
	backend := c.backend()
	if backend == nil {
		c.logger.Error("custom resolution backend not available")
		return false
	}
	if !c.customApplied || c.lockedPort == nil {
		return false
	}
	port := *c.lockedPort
	if !backend.RevertResolution(port) {
		c.logger.Error("revert custom resolution failed", "port", port)
		return false
	}
	c.customApplied = false
	c.logger.Info("custom resolution reverted", "port", port)
	if clearLock {
		c.unlock()
		c.publishMonitor()
	}
	return true
}
