package x11

import (
	"testing"

	"github.com/1broseidon/displayout/internal/customres"
)

// initializedDriver returns a driver that skips the RandR handshake. Calls
// that reach the X server would panic on the nil connection.
func initializedDriver() *RandRDriver {
	d := NewRandRDriver(nil)
	d.initialized = true
	return d
}

func TestRandRDriver_InitializeWithoutConnection(t *testing.T) {
	d := NewRandRDriver(nil)
	if status := d.Initialize(); status != customres.StatusLibraryNotFound {
		t.Fatalf("Initialize = %v, want %v", status, customres.StatusLibraryNotFound)
	}
	if status := d.Unload(); status != customres.StatusNotInitialized {
		t.Fatalf("Unload before Initialize = %v", status)
	}
}

func TestRandRDriver_UnloadAbandonsTrials(t *testing.T) {
	d := initializedDriver()
	d.trials[0x42] = &trial{output: 0x42, mode: 0x99, crtc: 0x7, saved: true}
	d.trials[0x43] = &trial{output: 0x43, mode: 0x9a, crtc: 0x8}

	if status := d.Unload(); status != customres.StatusOK {
		t.Fatalf("Unload = %v", status)
	}
	if len(d.trials) != 0 {
		t.Fatalf("expected trials to be dropped, got %d", len(d.trials))
	}
	if status := d.RevertCustomDisplayTrial([]uint32{0x42}); status != customres.StatusNotInitialized {
		t.Fatalf("revert after Unload = %v, want %v", status, customres.StatusNotInitialized)
	}
}

func TestRandRDriver_RevertWithoutTrial(t *testing.T) {
	d := initializedDriver()
	for i := 0; i < 2; i++ {
		if status := d.RevertCustomDisplayTrial([]uint32{0x42}); status != customres.StatusNoActiveTrial {
			t.Fatalf("revert %d = %v, want %v", i+1, status, customres.StatusNoActiveTrial)
		}
	}
	if msg := d.ErrorMessage(customres.StatusNoActiveTrial); msg == customres.StatusNoActiveTrial.String() {
		t.Fatalf("expected error message to carry the display, got %q", msg)
	}
}

func TestRandRDriver_SaveWithoutTrial(t *testing.T) {
	d := initializedDriver()
	d.trials[0x42] = &trial{output: 0x42}

	if status := d.SaveCustomDisplay([]uint32{0x42, 0x43}, true, true); status != customres.StatusNoActiveTrial {
		t.Fatalf("SaveCustomDisplay = %v, want %v", status, customres.StatusNoActiveTrial)
	}
	if d.trials[0x42].saved {
		t.Fatalf("no display may be switched when one id lacks a trial")
	}

	d.initialized = false
	if status := d.SaveCustomDisplay([]uint32{0x42}, true, true); status != customres.StatusNotInitialized {
		t.Fatalf("SaveCustomDisplay uninitialized = %v", status)
	}
}

func TestRandRDriver_TryRejectsMismatchedArguments(t *testing.T) {
	d := initializedDriver()
	if status := d.TryCustomDisplay([]uint32{1, 2}, []customres.CustomDisplay{{}}); status != customres.StatusInvalidArgument {
		t.Fatalf("TryCustomDisplay = %v, want %v", status, customres.StatusInvalidArgument)
	}
	if status := d.TryCustomDisplay(nil, nil); status != customres.StatusInvalidArgument {
		t.Fatalf("TryCustomDisplay empty = %v", status)
	}
}

func TestRandRDriver_TimingRejectsEmptyMode(t *testing.T) {
	d := initializedDriver()
	if _, status := d.Timing(0x42, customres.TimingInput{Width: 0, Height: 1080, RefreshRate: 60}); status != customres.StatusInvalidArgument {
		t.Fatalf("Timing = %v, want %v", status, customres.StatusInvalidArgument)
	}
}
