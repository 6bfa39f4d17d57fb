package daemon

import (
	"encoding/json"
	"testing"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/node"
)

func TestEncodePin(t *testing.T) {
	raw, err := EncodePin(displayout.PinResolution, json.RawMessage(`{"width":2560,"height":1440}`))
	if err != nil {
		t.Fatalf("resolution: %v", err)
	}
	if w, h, _ := node.DecodeVec2u(raw); w != 2560 || h != 1440 {
		t.Fatalf("expected 2560x1440, got %dx%d", w, h)
	}

	raw, err = EncodePin(displayout.PinFullscreen, json.RawMessage(`true`))
	if err != nil {
		t.Fatalf("fullscreen: %v", err)
	}
	if v, _ := node.DecodeBool(raw); !v {
		t.Fatalf("expected true")
	}

	raw, err = EncodePin(displayout.PinRefreshRate, json.RawMessage(`59.94`))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if v, _ := node.DecodeFloat32(raw); v != float32(59.94) {
		t.Fatalf("expected 59.94, got %v", v)
	}

	raw, err = EncodePin(displayout.PinMonitor, json.RawMessage(`"Left Panel - 1 - 0"`))
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if got := node.DecodeString(raw); got != "Left Panel - 1 - 0" {
		t.Fatalf("unexpected monitor %q", got)
	}
}

func TestEncodePin_Rejections(t *testing.T) {
	cases := []struct {
		pin   string
		value string
	}{
		{displayout.PinResolution, `{"width":0,"height":720}`},
		{displayout.PinResolution, `"1280by720"`},
		{displayout.PinVSync, `"yes"`},
		{displayout.PinRefreshRate, `0`},
		{displayout.PinMonitor, `3`},
		{displayout.PinInput, `{}`},
		{"Gamma", `1`},
		{displayout.PinFullscreen, ``},
	}
	for _, tc := range cases {
		if _, err := EncodePin(tc.pin, json.RawMessage(tc.value)); err == nil {
			t.Fatalf("%s=%s: expected error", tc.pin, tc.value)
		}
	}
}

func TestParseResolution(t *testing.T) {
	w, h, err := ParseResolution(" 1920X1080 ")
	if err != nil || w != 1920 || h != 1080 {
		t.Fatalf("expected 1920x1080, got %dx%d (%v)", w, h, err)
	}
	for _, bad := range []string{"", "1920", "x1080", "0x10", "-1x5"} {
		if _, _, err := ParseResolution(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
