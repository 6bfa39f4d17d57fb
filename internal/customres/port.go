package customres

import "fmt"

// PortID identifies one physical output on one GPU. GPU is the driver's
// opaque GPU handle widened to an integer; Port is the output index on that
// GPU. A PortID goes stale on hot-unplug and operations on it then fail like
// any unknown port.
type PortID struct {
	GPU  uint64
	Port uint32
}

// Compare orders ports by GPU handle, then by port index.
func (p PortID) Compare(other PortID) int {
	switch {
	case p.GPU < other.GPU:
		return -1
	case p.GPU > other.GPU:
		return 1
	case p.Port < other.Port:
		return -1
	case p.Port > other.Port:
		return 1
	}
	return 0
}

// Less reports whether p sorts before other.
func (p PortID) Less(other PortID) bool {
	return p.Compare(other) < 0
}

func (p PortID) String() string {
	return fmt.Sprintf("gpu=%d port=%d", p.GPU, p.Port)
}
