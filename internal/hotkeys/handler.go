// Package hotkeys grabs global key sequences on the X root window and runs
// a callback when one is pressed.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/displayout/internal/logging"
	"github.com/1broseidon/displayout/internal/x11"
)

type binding struct {
	sequence string
	mods     uint16
	keycodes []xproto.Keycode
	callback func()
}

// Handler manages global keyboard shortcuts. Key presses arrive through the
// connection's event pump, so callbacks run on the goroutine polling X
// events and must not block.
type Handler struct {
	xu       *xgbutil.XUtil
	root     xproto.Window
	logger   *slog.Logger
	bindings []binding
}

var initOnce sync.Once

// NewHandler creates a hotkey handler and routes conn's key presses to it.
func NewHandler(conn *x11.Connection, logger *slog.Logger) *Handler {
	initOnce.Do(func() {
		keybind.Initialize(conn.XUtil)
		configureIgnoreMods(conn.XUtil)
	})

	h := &Handler{
		xu:     conn.XUtil,
		root:   conn.Root,
		logger: logging.Component(logger, "hotkeys"),
	}
	conn.SetKeyPressHandler(func(ev xproto.KeyPressEvent) {
		h.dispatch(ev.State, ev.Detail)
	})
	return h
}

// RegisterFunc grabs keySequence (xgbutil syntax, e.g. "Mod4-Shift-f") and
// runs callback whenever it is pressed.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	mods, keycodes, err := keybind.ParseString(h.xu, keySequence)
	if err != nil {
		return fmt.Errorf("hotkey %q: %w", keySequence, err)
	}
	for _, kc := range keycodes {
		if err := keybind.GrabChecked(h.xu, h.root, mods, kc); err != nil {
			if _, ok := err.(xproto.AccessError); ok {
				return fmt.Errorf("hotkey %q is already grabbed by another client", keySequence)
			}
			return fmt.Errorf("grab hotkey %q: %w", keySequence, err)
		}
	}
	h.bindings = append(h.bindings, binding{
		sequence: keySequence,
		mods:     mods,
		keycodes: keycodes,
		callback: callback,
	})
	h.logger.Info("hotkey registered", "keys", keySequence)
	return nil
}

// dispatch runs the callback bound to a key press and reports whether one
// matched.
func (h *Handler) dispatch(state uint16, detail xproto.Keycode) bool {
	mods, kc := keybind.DeduceKeyInfo(state, detail)
	for _, b := range h.bindings {
		if b.mods != mods {
			continue
		}
		for _, bkc := range b.keycodes {
			if bkc == kc {
				h.logger.Debug("hotkey triggered", "keys", b.sequence)
				b.callback()
				return true
			}
		}
	}
	return false
}

// Close releases every grab.
func (h *Handler) Close() {
	for _, b := range h.bindings {
		for _, kc := range b.keycodes {
			keybind.Ungrab(h.xu, h.root, b.mods, kc)
		}
	}
	h.bindings = nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
