package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
)

// PollEvents drains pending X events without blocking and delivers those
// addressed to this connection's windows. X errors from unchecked requests
// are returned after the queue is drained.
func (c *Connection) PollEvents() error {
	xevent.Read(c.XUtil, false)

	var firstErr error
	for !xevent.Empty(c.XUtil) {
		ev, xerr := xevent.Dequeue(c.XUtil)
		if xerr != nil {
			if firstErr == nil {
				firstErr = xerr
			}
			continue
		}
		switch e := ev.(type) {
		case xproto.ConfigureNotifyEvent:
			if w, ok := c.windows[e.Window]; ok {
				w.configured(e)
			}
		case xproto.UnmapNotifyEvent:
			if w, ok := c.windows[e.Window]; ok {
				w.emit(Event{Kind: EventIconify})
			}
		case xproto.MapNotifyEvent:
			if w, ok := c.windows[e.Window]; ok {
				w.emit(Event{Kind: EventDeiconify})
			}
		case xproto.KeyPressEvent:
			if c.keyPress != nil {
				c.keyPress(e)
			}
		case xproto.ClientMessageEvent:
			if w, ok := c.windows[e.Window]; ok && icccm.IsDeleteProtocol(c.XUtil, xevent.ClientMessageEvent{ClientMessageEvent: &e}) {
				w.emit(Event{Kind: EventClose})
			}
		}
	}
	return firstErr
}

// configured reports the window's geometry. Reparenting window managers
// send parent-relative coordinates, so the position is re-read from the
// server.
func (w *Window) configured(e xproto.ConfigureNotifyEvent) {
	x, y := int(e.X), int(e.Y)
	if gx, gy, _, _, err := w.Geometry(); err == nil {
		x, y = gx, gy
	}
	w.emit(Event{Kind: EventConfigure, X: x, Y: y, Width: int(e.Width), Height: int(e.Height)})
}
