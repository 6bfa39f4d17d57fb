package customres

// Backend overrides video-mode timing on physical outputs. No method panics
// or returns an error: failures are logged by the implementation and
// reported as false or ok=false.
type Backend interface {
	// Init acquires the driver session. A backend whose Init failed must not
	// be used.
	Init() bool
	// Shutdown releases the driver session. Outstanding overrides are
	// abandoned, not reverted.
	Shutdown()
	// SetResolutionAndRefreshRate applies req to port as a try/save
	// transaction. A failed save is rolled back before returning.
	SetResolutionAndRefreshRate(port PortID, req Request) bool
	// RevertResolution reverts the custom mode on port.
	RevertResolution(port PortID) bool
	// AdapterName returns the first candidate adapter name that resolves to
	// the same display as port.
	AdapterName(port PortID, candidates []string) (string, bool)
	// ActivePortIDs lists the outputs currently driving a display.
	ActivePortIDs() []PortID
	// PortIDFromAdapterName resolves a windowing-layer adapter name to a port.
	PortIDFromAdapterName(name string) (PortID, bool)
}
