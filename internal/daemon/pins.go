package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/node"
)

// EncodePin converts the JSON form of a pin value into the node's wire
// encoding. Resolution accepts {"width":W,"height":H} or "WxH".
func EncodePin(pin string, value json.RawMessage) ([]byte, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return nil, fmt.Errorf("%s: value is required", pin)
	}
	switch pin {
	case displayout.PinResolution:
		w, h, err := decodeResolution(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pin, err)
		}
		return node.EncodeVec2u(w, h), nil
	case displayout.PinFullscreen, displayout.PinVSync:
		var v bool
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, fmt.Errorf("%s: expected a boolean: %w", pin, err)
		}
		return node.EncodeBool(v), nil
	case displayout.PinRefreshRate:
		var v float32
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, fmt.Errorf("%s: expected a number: %w", pin, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%s: must be > 0", pin)
		}
		return node.EncodeFloat32(v), nil
	case displayout.PinMonitor:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, fmt.Errorf("%s: expected a string: %w", pin, err)
		}
		return node.EncodeString(v), nil
	case displayout.PinInput:
		return nil, fmt.Errorf("%s: pin is driven by the pipeline", pin)
	default:
		return nil, fmt.Errorf("unknown pin %q", pin)
	}
}

func decodeResolution(value json.RawMessage) (uint32, uint32, error) {
	if value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return 0, 0, err
		}
		return ParseResolution(s)
	}
	var r struct {
		Width  uint32 `json:"width"`
		Height uint32 `json:"height"`
	}
	if err := json.Unmarshal(value, &r); err != nil {
		return 0, 0, fmt.Errorf("expected {\"width\",\"height\"}: %w", err)
	}
	if r.Width == 0 || r.Height == 0 {
		return 0, 0, fmt.Errorf("width and height must be > 0")
	}
	return r.Width, r.Height, nil
}

// ParseResolution parses "WxH".
func ParseResolution(s string) (uint32, uint32, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("resolution %q: expected WxH", s)
	}
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil || w == 0 {
		return 0, 0, fmt.Errorf("resolution %q: bad width", s)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil || h == 0 {
		return 0, 0, fmt.Errorf("resolution %q: bad height", s)
	}
	return uint32(w), uint32(h), nil
}
