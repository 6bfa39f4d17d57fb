// Package present describes the presentation capability consumed by output
// nodes: surfaces, swapchains, per-frame semaphores and the GPU flush used
// before tearing resources down.
package present

import (
	"context"
	"errors"
)

// ErrOutOfDate is returned by Present when the surface no longer matches the
// swapchain, typically after an external resize or monitor change.
var ErrOutOfDate = errors.New("swapchain out of date")

type (
	SurfaceHandle   uint64
	SwapchainHandle uint64
	SemaphoreHandle uint64
)

// PresentMode selects presentation pacing.
type PresentMode int

const (
	PresentModeImmediate PresentMode = iota
	PresentModeFIFO
)

func (m PresentMode) String() string {
	if m == PresentModeFIFO {
		return "fifo"
	}
	return "immediate"
}

// ModeFor maps a vsync flag to a present mode.
func ModeFor(vsync bool) PresentMode {
	if vsync {
		return PresentModeFIFO
	}
	return PresentModeImmediate
}

// Extent is a 2D size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// Format is the pixel layout of a texture. Only BGRA8 is produced by the
// pipeline stages in this module.
type Format int

const (
	FormatBGRA8 Format = iota
)

// Texture is a GPU image handed to the output stage. Memory is the opaque
// device allocation; zero means the input is missing. Pixels optionally
// mirrors the image in host memory (tightly packed rows).
type Texture struct {
	Memory uint64
	Width  uint32
	Height uint32
	Format Format
	Pixels []byte
}

// Image is one swapchain image.
type Image struct {
	Handle uint64
	Extent Extent
}

// SwapchainOptions configures swapchain creation.
type SwapchainOptions struct {
	Surface SurfaceHandle
	Extent  Extent
	Mode    PresentMode
}

// Swapchain is a created swapchain and its images.
type Swapchain struct {
	Handle     SwapchainHandle
	FrameCount uint32
	Images     []Image
}

// Submission copies Source into the swapchain image Target, transitions it
// to the presentable layout, waits on Wait and signals Signal.
type Submission struct {
	Swapchain SwapchainHandle
	Source    Texture
	Target    uint32
	Wait      SemaphoreHandle
	Signal    SemaphoreHandle
}

// Presenter is the GPU presentation subsystem.
type Presenter interface {
	CreateSurface(native uintptr) (SurfaceHandle, error)
	DestroySurface(surface SurfaceHandle)

	CreateSwapchain(opts SwapchainOptions) (Swapchain, error)
	DestroySwapchain(swapchain SwapchainHandle)

	CreateSemaphore() (SemaphoreHandle, error)
	DestroySemaphore(sem SemaphoreHandle)

	// AcquireNextImage returns the index of the next image; signal is
	// signalled when the image may be written.
	AcquireNextImage(swapchain SwapchainHandle, signal SemaphoreHandle) (uint32, error)
	Submit(sub Submission) error
	Present(swapchain SwapchainHandle, index uint32, wait SemaphoreHandle) error

	// Flush submits an empty command and waits for all prior GPU work.
	Flush(ctx context.Context) error
}
