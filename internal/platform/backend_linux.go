//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/displayout/internal/x11"
)

// LinuxWindowing wraps an existing X11 connection behind the Windowing interface.
type LinuxWindowing struct {
	conn *x11.Connection
}

var _ Windowing = (*LinuxWindowing)(nil)

// NewLinuxWindowing creates the Linux windowing capability from an existing X11 connection.
func NewLinuxWindowing(conn *x11.Connection) *LinuxWindowing {
	return &LinuxWindowing{conn: conn}
}

func (b *LinuxWindowing) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 connection is nil")
	}
	return b.conn, nil
}

// Monitors returns all active monitors. The RandR output name serves as the
// adapter name.
func (b *LinuxWindowing) Monitors() ([]Monitor, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	out := make([]Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, monitorFromX11(m))
	}
	return out, nil
}

func monitorFromX11(m x11.Monitor) Monitor {
	return Monitor{
		AdapterName: m.Name,
		Name:        m.Name,
		Bounds:      Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		Mode:        VideoMode{Width: m.Width, Height: m.Height, RefreshRate: m.RefreshRate},
	}
}

// CreateWindow creates and maps a top-level X11 window.
func (b *LinuxWindowing) CreateWindow(opts WindowOptions) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	xw, err := conn.CreateWindow(opts.Title, opts.Width, opts.Height, opts.Resizable)
	if err != nil {
		return nil, err
	}
	w := &linuxWindow{
		conn:   conn,
		xw:     xw,
		bounds: Rect{Width: opts.Width, Height: opts.Height},
	}
	if x, y, width, height, err := xw.Geometry(); err == nil {
		w.bounds = Rect{X: x, Y: y, Width: width, Height: height}
	}
	xw.SetHandler(w.handle)
	return w, nil
}

type linuxWindow struct {
	conn        *x11.Connection
	xw          *x11.Window
	dispatcher  Dispatcher
	bounds      Rect
	shouldClose bool
	iconified   bool
}

func (w *linuxWindow) Native() uintptr { return uintptr(w.xw.ID()) }

func (w *linuxWindow) Bounds() (Rect, error) {
	x, y, width, height, err := w.xw.Geometry()
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: width, Height: height}, nil
}

func (w *linuxWindow) SetPosition(x, y int) error        { return w.xw.Move(x, y) }
func (w *linuxWindow) SetSize(width, height int) error   { return w.xw.Resize(width, height) }
func (w *linuxWindow) SetDecorated(decorated bool) error { return w.xw.SetDecorated(decorated) }
func (w *linuxWindow) Restore() error                    { return w.xw.Restore() }
func (w *linuxWindow) ShouldClose() bool                 { return w.shouldClose }
func (w *linuxWindow) SetShouldClose(close bool)         { w.shouldClose = close }

func (w *linuxWindow) PollEvents() error {
	if w.xw.Destroyed() {
		return nil
	}
	return w.conn.PollEvents()
}

func (w *linuxWindow) Subscribe(handler EventHandler) func() {
	return w.dispatcher.Subscribe(handler)
}

func (w *linuxWindow) Destroy() {
	w.dispatcher.Reset()
	w.xw.Destroy()
}

func (w *linuxWindow) handle(ev x11.Event) {
	for _, e := range translate(&w.bounds, &w.iconified, &w.shouldClose, ev) {
		w.dispatcher.Dispatch(e)
	}
}

// translate turns an X11 notification into window events, updating the
// tracked geometry, iconic state and close flag. A configure notification
// yields a move and/or resize only for the parts that changed.
func translate(bounds *Rect, iconified, shouldClose *bool, ev x11.Event) []Event {
	switch ev.Kind {
	case x11.EventConfigure:
		var out []Event
		if ev.X != bounds.X || ev.Y != bounds.Y {
			bounds.X, bounds.Y = ev.X, ev.Y
			out = append(out, MoveEvent{X: ev.X, Y: ev.Y})
		}
		if ev.Width != bounds.Width || ev.Height != bounds.Height {
			bounds.Width, bounds.Height = ev.Width, ev.Height
			out = append(out, ResizeEvent{Width: ev.Width, Height: ev.Height})
		}
		return out
	case x11.EventIconify, x11.EventDeiconify:
		v := ev.Kind == x11.EventIconify
		if *iconified == v {
			return nil
		}
		*iconified = v
		return []Event{IconifyEvent{Iconified: v}}
	case x11.EventClose:
		*shouldClose = true
		return []Event{CloseEvent{}}
	}
	return nil
}
