package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources. Windows
// created on a connection share its event queue, so every window of one
// connection must be driven from the same goroutine.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	windows  map[xproto.Window]*Window
	keyPress func(xproto.KeyPressEvent)
}

// NewConnection establishes a connection to the X11 server named by
// display (empty means $DISPLAY) and initializes the RandR extension.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to display %q: %w", display, err)
	}
	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	return &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		windows: make(map[xproto.Window]*Window),
	}, nil
}

// SetKeyPressHandler installs fn to receive key presses grabbed on the root
// window. It runs on the goroutine calling PollEvents.
func (c *Connection) SetKeyPressHandler(fn func(xproto.KeyPressEvent)) {
	c.keyPress = fn
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	for _, w := range c.windows {
		w.Destroy()
	}
	c.XUtil.Conn().Close()
}
