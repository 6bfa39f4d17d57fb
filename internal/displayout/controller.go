// Package displayout implements the output window node: it presents an input
// texture to a native window and can pin that window to a physical display
// whose video mode it overrides through a custom resolution backend.
package displayout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/logging"
	"github.com/1broseidon/displayout/internal/node"
	"github.com/1broseidon/displayout/internal/platform"
	"github.com/1broseidon/displayout/internal/portname"
	"github.com/1broseidon/displayout/internal/present"
)

var (
	ErrNoWindow     = errors.New("output window not created")
	ErrWindowClosed = errors.New("output window closed")
	ErrNoInput      = errors.New("input texture missing")
	ErrNoSwapchain  = errors.New("swapchain unavailable")
	ErrCustomMode   = errors.New("custom resolution request failed")
)

// WindowTitle is the title of every output window.
const WindowTitle = "displayout"

// Resolution is a window or display size in pixels.
type Resolution struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Config holds the node's pin values.
type Config struct {
	Resolution  Resolution
	Fullscreen  bool
	VSync       bool
	RefreshRate float32
	ColorDepth  uint32
	Format      customres.PixelFormat
	// Monitor is the display string of the locked port, or portname.None.
	Monitor string
}

// DefaultConfig returns the pin defaults of a new node.
func DefaultConfig() Config {
	return Config{
		Resolution:  Resolution{Width: 1920, Height: 1080},
		RefreshRate: 60,
		ColorDepth:  customres.DefaultColorDepth,
		Format:      customres.FormatB8G8R8A8Unorm,
		Monitor:     portname.None,
	}
}

// Deps are the capabilities a Controller drives.
type Deps struct {
	Host      node.Host
	Windowing platform.Windowing
	Presenter present.Presenter
	Backends  customres.Provider
	Logger    *slog.Logger
}

// Controller is one output node. All methods must be called from the
// goroutine running the node.
type Controller struct {
	id        uuid.UUID
	cfg       Config
	host      node.Host
	windowing platform.Windowing
	presenter present.Presenter
	backends  customres.Provider
	resolver  *portname.Resolver
	logger    *slog.Logger

	state       State
	window      platform.Window
	unsubscribe func()
	decorated   bool

	surface      present.SurfaceHandle
	swapchain    present.SwapchainHandle
	images       []present.Image
	extent       present.Extent
	waitSems     []present.SemaphoreHandle
	signalSems   []present.SemaphoreHandle
	currentFrame uint32

	lockedPort    *customres.PortID
	customApplied bool
}

var _ node.Node = (*Controller)(nil)

// New creates a detached controller and publishes the initial monitor list.
// A parseable cfg.Monitor configures a lock that is honoured on EnterContext.
func New(deps Deps, cfg Config) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	id := uuid.New()
	c := &Controller{
		id:        id,
		cfg:       cfg,
		host:      deps.Host,
		windowing: deps.Windowing,
		presenter: deps.Presenter,
		backends:  deps.Backends,
		resolver:  portname.NewResolver(deps.Windowing, deps.Backends),
		logger:    logging.Component(logger, "displayout").With(logging.KeyNode, id.String()),
	}
	if !portname.IsNone(cfg.Monitor) {
		port, err := portname.Parse(cfg.Monitor)
		switch {
		case err != nil:
			c.logger.Warn("ignoring configured monitor", "monitor", cfg.Monitor, "error", err)
			c.cfg.Monitor = portname.None
		case !c.connected(port):
			c.logger.Warn("ignoring configured monitor that is not connected", "monitor", cfg.Monitor)
			c.cfg.Monitor = portname.None
		default:
			c.lockedPort = &port
		}
	}
	c.refreshMonitorList()
	return c
}

// ID returns the node's identity.
func (c *Controller) ID() uuid.UUID { return c.id }

// Config returns the current pin values.
func (c *Controller) Config() Config { return c.cfg }

// State returns the window mode.
func (c *Controller) State() State { return c.state }

// MonitorListName is the host string list holding the selectable monitors.
func (c *Controller) MonitorListName() string {
	return "Monitor_" + c.id.String()
}

func (c *Controller) backend() customres.Backend {
	if c.backends == nil {
		return nil
	}
	return c.backends.Get()
}

func (c *Controller) request() customres.Request {
	return customres.Request{
		Width:       c.cfg.Resolution.Width,
		Height:      c.cfg.Resolution.Height,
		RefreshRate: c.cfg.RefreshRate,
		ColorDepth:  c.cfg.ColorDepth,
		Format:      c.cfg.Format,
	}
}

// EnterContext creates the window, surface and swapchain, then restores a
// configured lock and fullscreen mode.
func (c *Controller) EnterContext() {
	if c.window != nil {
		return
	}
	c.refreshMonitorList()

	win, err := c.windowing.CreateWindow(platform.WindowOptions{
		Title:  WindowTitle,
		Width:  int(c.cfg.Resolution.Width),
		Height: int(c.cfg.Resolution.Height),
	})
	if err != nil {
		c.logger.Error("create window failed", "error", err)
		return
	}
	c.window = win
	c.decorated = true
	c.unsubscribe = win.Subscribe(c.handleEvent)
	c.state = StateWindowedUnlocked

	surface, err := c.presenter.CreateSurface(win.Native())
	if err != nil {
		c.logger.Error("create surface failed", "error", err)
		c.teardown()
		return
	}
	c.surface = surface
	if !c.recreateSwapchain() {
		return
	}

	if c.lockedPort != nil && !c.connected(*c.lockedPort) {
		c.logger.Warn("locked monitor is no longer connected", "port", *c.lockedPort)
		c.lockedPort = nil
		c.publishMonitor()
	}
	if c.lockedPort != nil {
		c.state = StateWindowedLocked
		c.moveToMonitor()
		c.UpdateCustomResolution()
	}
	if c.cfg.Fullscreen {
		c.enterFullscreen()
	}
	c.logger.Info("output window ready", "state", c.state)
}

// ExitContext reverts any applied custom resolution and releases the window.
// A configured lock survives for the next EnterContext.
func (c *Controller) ExitContext() {
	c.teardown()
}

// Close releases everything; it is safe to call more than once.
func (c *Controller) Close() {
	c.teardown()
}

// teardown moves any state to Detached.
func (c *Controller) teardown() {
	if c.customApplied {
		if !c.RevertMonitorResolution(false) {
			c.logger.Warn("custom resolution left applied at teardown")
		}
		c.customApplied = false
	}
	c.destroySwapchain()
	if c.surface != 0 {
		c.presenter.DestroySurface(c.surface)
		c.surface = 0
	}
	if c.window != nil {
		if c.unsubscribe != nil {
			c.unsubscribe()
			c.unsubscribe = nil
		}
		c.window.Destroy()
		c.window = nil
	}
	c.state = StateDetached
}

// PathStart schedules the first execution.
func (c *Controller) PathStart() {
	c.host.ScheduleNode(c.id, 1)
}

// PathStop waits for outstanding GPU work.
func (c *Controller) PathStop() {
	if err := c.presenter.Flush(context.Background()); err != nil {
		c.logger.Warn("flush failed", "error", err)
	}
}

// Execute presents one frame of params.Input and schedules the next one.
func (c *Controller) Execute(ctx context.Context, params node.ExecuteParams) error {
	if c.window == nil {
		return ErrNoWindow
	}
	if params.Input.Memory == 0 {
		return ErrNoInput
	}
	if err := c.window.PollEvents(); err != nil {
		return fmt.Errorf("poll window events: %w", err)
	}
	// An event handler may have torn the window down.
	if c.window == nil {
		return ErrWindowClosed
	}
	if c.window.ShouldClose() {
		c.logger.Info("output window closed")
		c.teardown()
		return ErrWindowClosed
	}
	if c.swapchain == 0 && !c.recreateSwapchain() {
		return ErrNoSwapchain
	}

	frame := c.currentFrame
	index, err := c.presenter.AcquireNextImage(c.swapchain, c.waitSems[frame])
	if err == nil {
		err = c.presenter.Submit(present.Submission{
			Swapchain: c.swapchain,
			Source:    params.Input,
			Target:    index,
			Wait:      c.waitSems[frame],
			Signal:    c.signalSems[frame],
		})
	}
	if err == nil {
		err = c.presenter.Present(c.swapchain, index, c.signalSems[frame])
	}
	if err != nil {
		c.logger.Debug("present failed, recreating swapchain", "error", err)
		if !c.recreateSwapchain() {
			return fmt.Errorf("%w: %w", ErrNoSwapchain, err)
		}
	} else {
		c.currentFrame = (frame + 1) % uint32(len(c.waitSems))
	}

	c.host.ScheduleNode(c.id, 1)
	return nil
}
