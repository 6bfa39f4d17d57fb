package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EventKind classifies window notifications.
type EventKind int

const (
	// EventConfigure carries the window's root-relative geometry.
	EventConfigure EventKind = iota
	EventIconify
	EventDeiconify
	// EventClose is a WM_DELETE_WINDOW request.
	EventClose
)

// Event is a notification for one window.
type Event struct {
	Kind   EventKind
	X      int
	Y      int
	Width  int
	Height int
}

// Window is a top-level window owned by this process.
type Window struct {
	conn      *Connection
	win       *xwindow.Window
	resizable bool
	handler   func(Event)
}

const windowEventMask = xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange

// CreateWindow creates and maps a top-level window. A non-resizable window
// pins its size through WM_NORMAL_HINTS.
func (c *Connection) CreateWindow(title string, width, height int, resizable bool) (*Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}
	if err := win.CreateChecked(c.Root, 0, 0, width, height,
		xproto.CwBackPixel|xproto.CwEventMask, 0x000000, windowEventMask); err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &Window{conn: c, win: win, resizable: resizable}
	_ = icccm.WmNameSet(c.XUtil, win.Id, title)
	_ = ewmh.WmNameSet(c.XUtil, win.Id, title)
	if err := icccm.WmProtocolsSet(c.XUtil, win.Id, []string{"WM_DELETE_WINDOW"}); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	w.pinSize(width, height)

	c.windows[win.Id] = w
	win.Map()
	return w, nil
}

// ID returns the X window id.
func (w *Window) ID() xproto.Window { return w.win.Id }

// SetHandler installs the window's event callback.
func (w *Window) SetHandler(handler func(Event)) { w.handler = handler }

func (w *Window) pinSize(width, height int) {
	if w.resizable {
		return
	}
	_ = icccm.WmNormalHintsSet(w.conn.XUtil, w.win.Id, &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
		MinWidth:  uint(width),
		MinHeight: uint(height),
		MaxWidth:  uint(width),
		MaxHeight: uint(height),
	})
}

// Geometry returns the window's root-relative position and size.
func (w *Window) Geometry() (x, y, width, height int, err error) {
	conn := w.conn.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(w.win.Id)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(conn, w.win.Id, w.conn.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// Move asks the window manager to move the window, falling back to a direct
// configure request.
func (w *Window) Move(x, y int) error {
	if err := ewmh.MoveWindow(w.conn.XUtil, w.win.Id, x, y); err != nil {
		w.win.Move(x, y)
	}
	return nil
}

// Resize changes the window size, updating the size hints of a
// non-resizable window first.
func (w *Window) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", width, height)
	}
	w.pinSize(width, height)
	if err := ewmh.ResizeWindow(w.conn.XUtil, w.win.Id, width, height); err != nil {
		w.win.Resize(width, height)
	}
	return nil
}

// SetDecorated toggles window manager decorations through _MOTIF_WM_HINTS.
func (w *Window) SetDecorated(decorated bool) error {
	hints := &motif.Hints{Flags: motif.HintDecorations, Decoration: motif.DecorationNone}
	if decorated {
		hints.Decoration = motif.DecorationAll
	}
	if err := motif.WmHintsSet(w.conn.XUtil, w.win.Id, hints); err != nil {
		return fmt.Errorf("failed to set motif hints: %w", err)
	}
	return nil
}

// Restore maps an iconified window and asks the window manager to activate it.
func (w *Window) Restore() error {
	w.win.Map()
	return w.Activate()
}

// Destroy releases the X window.
func (w *Window) Destroy() {
	if w.win.Destroyed {
		return
	}
	delete(w.conn.windows, w.win.Id)
	w.handler = nil
	w.win.Destroy()
}

// Destroyed reports whether Destroy has been called.
func (w *Window) Destroyed() bool { return w.win.Destroyed }

func (w *Window) emit(ev Event) {
	if w.handler != nil {
		w.handler(ev)
	}
}
