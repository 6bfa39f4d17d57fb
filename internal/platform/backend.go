package platform

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Overlap returns the area shared by r and other.
func (r Rect) Overlap(other Rect) int {
	w := min(r.X+r.Width, other.X+other.Width) - max(r.X, other.X)
	h := min(r.Y+r.Height, other.Y+other.Height) - max(r.Y, other.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// VideoMode is a monitor's current native mode.
type VideoMode struct {
	Width       int
	Height      int
	RefreshRate float64
}

// Monitor describes a physical display as the window system sees it.
// AdapterName is the window system's identifier for the display and is the
// only field used to bridge to a display driver.
type Monitor struct {
	AdapterName string
	Name        string
	Bounds      Rect
	Mode        VideoMode
}

// WindowOptions configures a new top-level window.
type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// Windowing abstracts the window system.
type Windowing interface {
	Monitors() ([]Monitor, error)
	CreateWindow(opts WindowOptions) (Window, error)
}

// Window is a native top-level window. All methods must be called from the
// goroutine that created it.
type Window interface {
	// Native returns the platform handle used to create presentation surfaces.
	Native() uintptr
	Bounds() (Rect, error)
	SetPosition(x, y int) error
	SetSize(width, height int) error
	SetDecorated(decorated bool) error
	// Restore un-iconifies the window.
	Restore() error
	ShouldClose() bool
	SetShouldClose(close bool)
	// PollEvents processes pending window-system events, dispatching them to
	// subscribers on the calling goroutine.
	PollEvents() error
	// Subscribe registers handler for this window's events. The returned
	// function removes it; Destroy removes all handlers.
	Subscribe(handler EventHandler) (unsubscribe func())
	Destroy()
}

// FindMonitor returns the monitor whose adapter name equals adapterName.
func FindMonitor(monitors []Monitor, adapterName string) (Monitor, bool) {
	for _, m := range monitors {
		if m.AdapterName == adapterName {
			return m, true
		}
	}
	return Monitor{}, false
}

// AdapterNames lists the adapter names of monitors in enumeration order.
func AdapterNames(monitors []Monitor) []string {
	names := make([]string, 0, len(monitors))
	for _, m := range monitors {
		names = append(names, m.AdapterName)
	}
	return names
}

// BestMonitor picks the monitor sharing the largest area with window. Ties
// keep the earlier monitor; a window that overlaps no monitor has none.
func BestMonitor(window Rect, monitors []Monitor) (Monitor, bool) {
	best := -1
	bestOverlap := 0
	for i, m := range monitors {
		if overlap := window.Overlap(m.Bounds); overlap > bestOverlap {
			bestOverlap = overlap
			best = i
		}
	}
	if best < 0 {
		return Monitor{}, false
	}
	return monitors[best], true
}
