package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// EWMH source indication for requests made on the user's behalf.
const sourcePager = 2

// sendRootMessage sends a 32-bit client message about win to the root
// window, where the window manager picks it up. Unused data words are zero.
func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atom, err := xprop.Atm(c.XUtil, atomName)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}
	var words [5]uint32
	copy(words[:], data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(words[:]),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes())).Check()
}

// Activate asks the window manager to focus and raise the window.
func (w *Window) Activate() error {
	return w.conn.sendRootMessage(w.win.Id, "_NET_ACTIVE_WINDOW", sourcePager, uint32(xproto.TimeCurrentTime))
}
