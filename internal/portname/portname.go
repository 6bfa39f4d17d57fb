// Package portname converts between port identities and the display strings
// shown in monitor selection lists.
//
// A display string has the form "<label> - <gpu> - <port>". Only the last two
// fields are structural: both are decimal integers, and everything before the
// second-to-last separator is opaque label text that may itself contain the
// separator. Parsing therefore anchors on the end of the string.
package portname

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/displayout/internal/customres"
)

const (
	// Separator splits the label, GPU and port fields.
	Separator = " - "
	// None is the selection list entry meaning "no monitor".
	None = "NONE"
	// UnknownLabel is used when a port's monitor name cannot be resolved.
	UnknownLabel = "Unknown"
)

// ErrMalformed is returned for strings that do not end in two integer fields.
var ErrMalformed = errors.New("malformed port string")

// Format renders port as a display string with the given label.
func Format(label string, port customres.PortID) string {
	return label + Separator + strconv.FormatUint(port.GPU, 10) + Separator + strconv.FormatUint(uint64(port.Port), 10)
}

// Parse extracts the port identity from a display string.
func Parse(s string) (customres.PortID, error) {
	portStart := strings.LastIndex(s, Separator)
	if portStart < 0 {
		return customres.PortID{}, fmt.Errorf("%w: %q has no port field", ErrMalformed, s)
	}
	port, err := strconv.ParseUint(s[portStart+len(Separator):], 10, 32)
	if err != nil {
		return customres.PortID{}, fmt.Errorf("%w: port field of %q: %v", ErrMalformed, s, err)
	}

	gpuStart := strings.LastIndex(s[:portStart], Separator)
	if gpuStart < 0 {
		return customres.PortID{}, fmt.Errorf("%w: %q has no gpu field", ErrMalformed, s)
	}
	gpu, err := strconv.ParseUint(s[gpuStart+len(Separator):portStart], 10, 64)
	if err != nil {
		return customres.PortID{}, fmt.Errorf("%w: gpu field of %q: %v", ErrMalformed, s, err)
	}

	return customres.PortID{GPU: gpu, Port: uint32(port)}, nil
}

// Label returns the label part of a display string, or s when it is not a
// well-formed display string.
func Label(s string) string {
	portStart := strings.LastIndex(s, Separator)
	if portStart < 0 {
		return s
	}
	gpuStart := strings.LastIndex(s[:portStart], Separator)
	if gpuStart < 0 {
		return s
	}
	return s[:gpuStart]
}

// IsNone reports whether s selects no monitor.
func IsNone(s string) bool {
	return s == "" || s == None
}
