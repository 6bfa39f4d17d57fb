package displayout

import (
	"context"
	"fmt"

	"github.com/1broseidon/displayout/internal/present"
)

func (c *Controller) createSwapchain() error {
	bounds, err := c.window.Bounds()
	if err != nil {
		return fmt.Errorf("window bounds: %w", err)
	}
	extent := present.Extent{Width: uint32(max(bounds.Width, 1)), Height: uint32(max(bounds.Height, 1))}
	sc, err := c.presenter.CreateSwapchain(present.SwapchainOptions{
		Surface: c.surface,
		Extent:  extent,
		Mode:    present.ModeFor(c.cfg.VSync),
	})
	if err != nil {
		return fmt.Errorf("create swapchain: %w", err)
	}
	c.swapchain = sc.Handle
	c.images = sc.Images
	c.extent = extent
	c.currentFrame = 0

	frames := max(sc.FrameCount, 1)
	for range frames {
		wait, err := c.presenter.CreateSemaphore()
		if err != nil {
			return fmt.Errorf("create semaphore: %w", err)
		}
		c.waitSems = append(c.waitSems, wait)
		signal, err := c.presenter.CreateSemaphore()
		if err != nil {
			return fmt.Errorf("create semaphore: %w", err)
		}
		c.signalSems = append(c.signalSems, signal)
	}
	return nil
}

// destroySwapchain waits for in-flight work before releasing the swapchain
// and its semaphores.
func (c *Controller) destroySwapchain() {
	if c.swapchain == 0 && len(c.waitSems) == 0 && len(c.signalSems) == 0 {
		return
	}
	if err := c.presenter.Flush(context.Background()); err != nil {
		c.logger.Warn("flush before swapchain destroy failed", "error", err)
	}
	for _, sem := range c.waitSems {
		c.presenter.DestroySemaphore(sem)
	}
	for _, sem := range c.signalSems {
		c.presenter.DestroySemaphore(sem)
	}
	c.waitSems = nil
	c.signalSems = nil
	c.images = nil
	if c.swapchain != 0 {
		c.presenter.DestroySwapchain(c.swapchain)
		c.swapchain = 0
	}
	c.extent = present.Extent{}
	c.currentFrame = 0
}

// recreateSwapchain replaces the swapchain for the current window size. A
// failure is fatal for the window: everything is torn down.
func (c *Controller) recreateSwapchain() bool {
	c.destroySwapchain()
	if c.surface == 0 || c.window == nil {
		return false
	}
	if err := c.createSwapchain(); err != nil {
		c.logger.Error("swapchain creation failed, closing output window", "error", err)
		c.teardown()
		return false
	}
	return true
}
