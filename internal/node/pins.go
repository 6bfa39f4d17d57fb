package node

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortValue is returned when a raw pin value is too small for its type.
var ErrShortValue = errors.New("pin value too short")

func need(raw []byte, n int, kind string) error {
	if len(raw) < n {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortValue, kind, n, len(raw))
	}
	return nil
}

// EncodeVec2u encodes a two-component unsigned vector.
func EncodeVec2u(x, y uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], x)
	binary.LittleEndian.PutUint32(buf[4:], y)
	return buf
}

// DecodeVec2u decodes a two-component unsigned vector.
func DecodeVec2u(raw []byte) (x, y uint32, err error) {
	if err := need(raw, 8, "vec2u"); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint32(raw[0:]), binary.LittleEndian.Uint32(raw[4:]), nil
}

func EncodeBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func DecodeBool(raw []byte) (bool, error) {
	if err := need(raw, 1, "bool"); err != nil {
		return false, err
	}
	return raw[0] != 0, nil
}

func EncodeFloat32(v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return buf
}

func DecodeFloat32(raw []byte) (float32, error) {
	if err := need(raw, 4, "float"); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(raw)), nil
}

func EncodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func DecodeUint32(raw []byte) (uint32, error) {
	if err := need(raw, 4, "uint"); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

// EncodeString encodes a NUL-terminated string.
func EncodeString(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf
}

// DecodeString decodes a string up to the first NUL, or the whole value.
func DecodeString(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}
