package customres

import (
	"log/slog"

	"github.com/1broseidon/displayout/internal/logging"
)

// DriverBackend is the vendor-driver-backed Backend. It runs the driver's
// try/save/revert custom display protocol for one display at a time.
type DriverBackend struct {
	driver Driver
	logger *slog.Logger
}

var _ Backend = (*DriverBackend)(nil)

// NewDriverBackend wraps driver. A nil logger discards output.
func NewDriverBackend(driver Driver, logger *slog.Logger) *DriverBackend {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DriverBackend{
		driver: driver,
		logger: logging.Component(logger, "customres"),
	}
}

// Factory returns a registry factory producing a backend over driver.
func Factory(driver Driver, logger *slog.Logger) func() Backend {
	return func() Backend {
		return NewDriverBackend(driver, logger)
	}
}

func (b *DriverBackend) failed(msg string, status Status, args ...any) {
	args = append(args, "status", int(status), "error", b.driver.ErrorMessage(status))
	b.logger.Error(msg, args...)
}

func (b *DriverBackend) Init() bool {
	if status := b.driver.Initialize(); status != StatusOK {
		b.failed("failed to initialize display driver", status)
		return false
	}
	return true
}

func (b *DriverBackend) Shutdown() {
	if status := b.driver.Unload(); status != StatusOK {
		b.failed("failed to unload display driver", status)
	}
}

func (b *DriverBackend) displayID(port PortID) (uint32, bool) {
	id, status := b.driver.DisplayIDFromPort(port.GPU, port.Port)
	if status != StatusOK {
		b.failed("failed to get display id from port", status, "port", port)
		return 0, false
	}
	return id, true
}

func driverFormat(f PixelFormat) (DriverFormat, bool) {
	switch f {
	case FormatB8G8R8A8Unorm:
		return DriverFormatA8R8G8B8, true
	default:
		return DriverFormatUnknown, false
	}
}

func (b *DriverBackend) SetResolutionAndRefreshRate(port PortID, req Request) bool {
	id, ok := b.displayID(port)
	if !ok {
		return false
	}
	format, ok := driverFormat(req.Format)
	if !ok {
		b.logger.Error("unsupported color format", "format", req.Format.String(), "port", port)
		return false
	}

	timing, status := b.driver.Timing(id, TimingInput{
		Width:       req.Width,
		Height:      req.Height,
		RefreshRate: req.RefreshRate,
		Scaling:     true,
		Type:        TimingOverrideAuto,
	})
	if status != StatusOK {
		b.failed("failed to get timing", status, "port", port)
		return false
	}

	display := CustomDisplay{
		Width:           req.Width,
		Height:          req.Height,
		Depth:           req.ColorDepth,
		ColorFormat:     format,
		SourcePartition: Partition{X: 0, Y: 0, W: 1, H: 1},
		XRatio:          1,
		YRatio:          1,
		Timing:          timing,
	}
	ids := []uint32{id}
	if status := b.driver.TryCustomDisplay(ids, []CustomDisplay{display}); status != StatusOK {
		b.failed("failed to try custom display", status, "port", port, "mode", req.String())
		return false
	}
	if status := b.driver.SaveCustomDisplay(ids, true, true); status != StatusOK {
		b.RevertResolution(port)
		b.failed("failed to save custom display", status, "port", port, "mode", req.String())
		return false
	}

	b.logger.Info("custom display applied", "port", port, "mode", req.String())
	return true
}

func (b *DriverBackend) RevertResolution(port PortID) bool {
	id, ok := b.displayID(port)
	if !ok {
		return false
	}
	if status := b.driver.RevertCustomDisplayTrial([]uint32{id}); status != StatusOK {
		b.failed("failed to revert custom display", status, "port", port)
		return false
	}
	b.logger.Info("custom display reverted", "port", port)
	return true
}

func (b *DriverBackend) AdapterName(port PortID, candidates []string) (string, bool) {
	id, ok := b.displayID(port)
	if !ok {
		return "", false
	}
	for _, name := range candidates {
		candidate, status := b.driver.DisplayIDByName(name)
		if status != StatusOK {
			continue
		}
		if candidate == id {
			return name, true
		}
	}
	return "", false
}

func (b *DriverBackend) PortIDFromAdapterName(name string) (PortID, bool) {
	id, status := b.driver.DisplayIDByName(name)
	if status != StatusOK {
		b.failed("failed to get display id by display name", status, "adapter", name)
		return PortID{}, false
	}
	gpu, port, status := b.driver.PortFromDisplayID(id)
	if status != StatusOK {
		b.failed("failed to get gpu and port id from display id", status, "display_id", id)
		return PortID{}, false
	}
	return PortID{GPU: gpu, Port: port}, true
}

func (b *DriverBackend) ActivePortIDs() []PortID {
	gpus, status := b.driver.EnumPhysicalGPUs()
	if status != StatusOK {
		b.failed("failed to enumerate physical GPUs", status)
		return nil
	}

	var ports []PortID
	for _, gpu := range gpus {
		displays, status := b.driver.ConnectedDisplays(gpu)
		if status != StatusOK {
			b.failed("failed to get connected display ids", status, "gpu", gpu)
			continue
		}
		for _, d := range displays {
			if !d.Active {
				continue
			}
			g, p, status := b.driver.PortFromDisplayID(d.ID)
			if status != StatusOK {
				b.failed("failed to get gpu and port id", status, "display_id", d.ID)
				continue
			}
			ports = append(ports, PortID{GPU: g, Port: p})
		}
	}
	return ports
}
