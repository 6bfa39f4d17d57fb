package displayout

// State is the window mode of an output node. Whether a custom resolution
// is applied is tracked separately and may only be true while a lock is held.
type State int

const (
	// StateDetached: no native window.
	StateDetached State = iota
	// StateWindowedUnlocked: window exists and follows normal placement.
	StateWindowedUnlocked
	// StateWindowedLocked: window is pinned to a port but decorated.
	StateWindowedLocked
	// StateLockedFullscreen: pinned, undecorated and held at the monitor's
	// bounds against external moves, resizes, iconify and close.
	StateLockedFullscreen
)

func (s State) String() string {
	switch s {
	case StateDetached:
		return "detached"
	case StateWindowedUnlocked:
		return "windowed-unlocked"
	case StateWindowedLocked:
		return "windowed-locked"
	case StateLockedFullscreen:
		return "locked-fullscreen"
	default:
		return "unknown"
	}
}

// HasWindow reports whether s owns a native window.
func (s State) HasWindow() bool {
	return s != StateDetached
}
