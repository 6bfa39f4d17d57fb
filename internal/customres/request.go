package customres

import (
	"fmt"
	"strings"
)

// PixelFormat is the colour format requested for a custom display mode.
type PixelFormat int

const (
	FormatB8G8R8A8Unorm PixelFormat = iota
	FormatR8G8B8A8Unorm
	FormatR16G16B16A16Float
)

// DefaultColorDepth is the bit depth used when a request does not name one.
const DefaultColorDepth = 32

var formatNames = map[PixelFormat]string{
	FormatB8G8R8A8Unorm:     "B8G8R8A8_UNORM",
	FormatR8G8B8A8Unorm:     "R8G8B8A8_UNORM",
	FormatR16G16B16A16Float: "R16G16B16A16_SFLOAT",
}

func (f PixelFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// ParsePixelFormat maps a format name (case-insensitive) to a PixelFormat.
func ParsePixelFormat(s string) (PixelFormat, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == want {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// Request describes the custom video mode to apply to a port.
type Request struct {
	Width       uint32
	Height      uint32
	RefreshRate float32
	ColorDepth  uint32
	Format      PixelFormat
}

// NewRequest returns a request with the default depth and format.
func NewRequest(width, height uint32, refreshRate float32) Request {
	return Request{
		Width:       width,
		Height:      height,
		RefreshRate: refreshRate,
		ColorDepth:  DefaultColorDepth,
		Format:      FormatB8G8R8A8Unorm,
	}
}

func (r Request) String() string {
	return fmt.Sprintf("%dx%d@%.2fHz %dbpp %s", r.Width, r.Height, r.RefreshRate, r.ColorDepth, r.Format)
}
