package customres

import "fmt"

// Status is a driver call result code. StatusOK is the only success value.
type Status int

const (
	StatusOK                  Status = 0
	StatusError               Status = -1
	StatusLibraryNotFound     Status = -2
	StatusNotInitialized      Status = -4
	StatusInvalidArgument     Status = -5
	StatusIncompatibleVersion Status = -9
	StatusInvalidDisplayID    Status = -180
	StatusNoActiveTrial       Status = -181
	StatusModeChangeFailed    Status = -182
)

var statusText = map[Status]string{
	StatusOK:                  "success",
	StatusError:               "generic error",
	StatusLibraryNotFound:     "driver library not found",
	StatusNotInitialized:      "driver session not initialized",
	StatusInvalidArgument:     "invalid argument",
	StatusIncompatibleVersion: "incompatible driver version",
	StatusInvalidDisplayID:    "invalid display id",
	StatusNoActiveTrial:       "no custom display trial active",
	StatusModeChangeFailed:    "mode change rejected",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("status %d", int(s))
}

// TimingOverride selects how the driver derives a timing descriptor.
type TimingOverride int

const (
	TimingOverrideCurrent TimingOverride = iota
	TimingOverrideAuto
)

// TimingInput asks the driver for a timing descriptor for the given mode.
type TimingInput struct {
	Width       uint32
	Height      uint32
	RefreshRate float32
	Scaling     bool
	Type        TimingOverride
}

// Timing is a driver timing descriptor.
type Timing struct {
	HVisible   uint32
	HSyncStart uint32
	HSyncEnd   uint32
	HTotal     uint32
	VVisible   uint32
	VSyncStart uint32
	VSyncEnd   uint32
	VTotal     uint32
	PixelClock uint64 // Hz
	Flags      uint32
}

// RefreshRate derives the vertical refresh rate of t in Hz.
func (t Timing) RefreshRate() float64 {
	if t.HTotal == 0 || t.VTotal == 0 {
		return 0
	}
	return float64(t.PixelClock) / (float64(t.HTotal) * float64(t.VTotal))
}

// Partition is a normalised source rectangle.
type Partition struct {
	X, Y, W, H float32
}

// CustomDisplay is the descriptor handed to the driver's trial call.
type CustomDisplay struct {
	Width           uint32
	Height          uint32
	Depth           uint32
	ColorFormat     DriverFormat
	SourcePartition Partition
	XRatio          float32
	YRatio          float32
	Timing          Timing
}

// DriverFormat is the driver's own colour format enumeration.
type DriverFormat int

const (
	DriverFormatUnknown DriverFormat = iota
	DriverFormatA8R8G8B8
)

// DisplayInfo describes one connected display on a GPU.
type DisplayInfo struct {
	ID     uint32
	Active bool
}

// Driver is the vendor custom-display API. Every call reports a Status.
type Driver interface {
	Initialize() Status
	Unload() Status
	ErrorMessage(status Status) string

	DisplayIDFromPort(gpu uint64, port uint32) (uint32, Status)
	PortFromDisplayID(displayID uint32) (gpu uint64, port uint32, status Status)
	DisplayIDByName(name string) (uint32, Status)

	EnumPhysicalGPUs() ([]uint64, Status)
	ConnectedDisplays(gpu uint64) ([]DisplayInfo, Status)

	Timing(displayID uint32, input TimingInput) (Timing, Status)
	TryCustomDisplay(displayIDs []uint32, displays []CustomDisplay) Status
	SaveCustomDisplay(displayIDs []uint32, thisOutputOnly, thisMonitorOnly bool) Status
	RevertCustomDisplayTrial(displayIDs []uint32) Status
}
