package portname

import (
	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/platform"
)

// Resolver bridges port identities and window-system monitors through the
// active custom resolution backend.
type Resolver struct {
	windowing platform.Windowing
	backends  customres.Provider
}

// NewResolver returns a resolver over windowing and the backend provider.
func NewResolver(windowing platform.Windowing, backends customres.Provider) *Resolver {
	return &Resolver{windowing: windowing, backends: backends}
}

func (r *Resolver) backend() customres.Backend {
	if r.backends == nil {
		return nil
	}
	return r.backends.Get()
}

func (r *Resolver) monitors() []platform.Monitor {
	if r.windowing == nil {
		return nil
	}
	monitors, err := r.windowing.Monitors()
	if err != nil {
		return nil
	}
	return monitors
}

// MonitorForPort finds the window-system monitor driven by port.
func (r *Resolver) MonitorForPort(port customres.PortID) (platform.Monitor, bool) {
	backend := r.backend()
	if backend == nil {
		return platform.Monitor{}, false
	}
	monitors := r.monitors()
	adapter, ok := backend.AdapterName(port, platform.AdapterNames(monitors))
	if !ok {
		return platform.Monitor{}, false
	}
	return platform.FindMonitor(monitors, adapter)
}

// PortForMonitor resolves a window-system monitor to its port.
func (r *Resolver) PortForMonitor(m platform.Monitor) (customres.PortID, bool) {
	backend := r.backend()
	if backend == nil {
		return customres.PortID{}, false
	}
	return backend.PortIDFromAdapterName(m.AdapterName)
}

// PortToString renders port with its monitor's name, or UnknownLabel.
func (r *Resolver) PortToString(port customres.PortID) string {
	label := UnknownLabel
	if m, ok := r.MonitorForPort(port); ok && m.Name != "" {
		label = m.Name
	}
	return Format(label, port)
}

// PossibleMonitors lists None followed by a display string for every active
// port.
func (r *Resolver) PossibleMonitors() []string {
	out := []string{None}
	backend := r.backend()
	if backend == nil {
		return out
	}
	for _, port := range backend.ActivePortIDs() {
		out = append(out, r.PortToString(port))
	}
	return out
}
