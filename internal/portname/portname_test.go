package portname

import (
	"errors"
	"testing"

	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/platform"
)

func TestFormat(t *testing.T) {
	got := Format("DELL U2720Q", customres.PortID{GPU: 140701, Port: 3})
	if got != "DELL U2720Q - 140701 - 3" {
		t.Fatalf("unexpected display string %q", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	ports := []customres.PortID{
		{GPU: 0, Port: 0},
		{GPU: 1, Port: 7},
		{GPU: 18446744073709551615, Port: 4294967295},
	}
	labels := []string{
		"Unknown",
		"LG - UltraFine",
		"Studio - 4 - 5",
		"trailing - ",
		"",
	}
	for _, port := range ports {
		for _, label := range labels {
			s := Format(label, port)
			got, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q): %v", s, err)
			}
			if got != port {
				t.Fatalf("Parse(%q) = %v, want %v", s, got, port)
			}
			if Label(s) != label {
				t.Fatalf("Label(%q) = %q, want %q", s, Label(s), label)
			}
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"",
		"NONE",
		"Monitor - 12",
		"Monitor - x - 1",
		"Monitor - 1 - y",
		"Monitor - 1 - -1",
		"Monitor - 1 - 4294967296",
		"Monitor-1-2",
	}
	for _, s := range cases {
		if _, err := Parse(s); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q) error = %v, want ErrMalformed", s, err)
		}
	}
}

func TestIsNone(t *testing.T) {
	if !IsNone("") || !IsNone(None) || IsNone("A - 1 - 2") {
		t.Fatalf("unexpected IsNone results")
	}
}

type fakeWindowing struct {
	monitors []platform.Monitor
}

func (f *fakeWindowing) Monitors() ([]platform.Monitor, error) { return f.monitors, nil }
func (f *fakeWindowing) CreateWindow(platform.WindowOptions) (platform.Window, error) {
	return nil, errors.New("not supported")
}

type fakeBackend struct {
	byAdapter map[string]customres.PortID
}

func (b *fakeBackend) Init() bool { return true }
func (b *fakeBackend) Shutdown()  {}
func (b *fakeBackend) SetResolutionAndRefreshRate(customres.PortID, customres.Request) bool {
	return false
}
func (b *fakeBackend) RevertResolution(customres.PortID) bool { return false }
func (b *fakeBackend) AdapterName(port customres.PortID, candidates []string) (string, bool) {
	for _, c := range candidates {
		if p, ok := b.byAdapter[c]; ok && p == port {
			return c, true
		}
	}
	return "", false
}
func (b *fakeBackend) ActivePortIDs() []customres.PortID {
	return []customres.PortID{{GPU: 5, Port: 0}, {GPU: 5, Port: 1}, {GPU: 6, Port: 0}}
}
func (b *fakeBackend) PortIDFromAdapterName(name string) (customres.PortID, bool) {
	p, ok := b.byAdapter[name]
	return p, ok
}

type staticProvider struct{ b customres.Backend }

func (p staticProvider) Get() customres.Backend { return p.b }

func newTestResolver() *Resolver {
	windowing := &fakeWindowing{monitors: []platform.Monitor{
		{AdapterName: "DP-1", Name: "Acme - Pro 27"},
		{AdapterName: "DP-2", Name: "Side"},
	}}
	backend := &fakeBackend{byAdapter: map[string]customres.PortID{
		"DP-1": {GPU: 5, Port: 0},
		"DP-2": {GPU: 5, Port: 1},
	}}
	return NewResolver(windowing, staticProvider{backend})
}

func TestResolver_PortToStringRoundTripsWithSeparatorInName(t *testing.T) {
	r := newTestResolver()
	port := customres.PortID{GPU: 5, Port: 0}

	s := r.PortToString(port)
	if s != "Acme - Pro 27 - 5 - 0" {
		t.Fatalf("unexpected display string %q", s)
	}
	got, err := Parse(s)
	if err != nil || got != port {
		t.Fatalf("round trip failed: %v %v", got, err)
	}
}

func TestResolver_UnknownLabel(t *testing.T) {
	r := newTestResolver()
	if s := r.PortToString(customres.PortID{GPU: 6, Port: 0}); s != "Unknown - 6 - 0" {
		t.Fatalf("unexpected display string %q", s)
	}
}

func TestResolver_PossibleMonitors(t *testing.T) {
	r := newTestResolver()
	got := r.PossibleMonitors()
	want := []string{None, "Acme - Pro 27 - 5 - 0", "Side - 5 - 1", "Unknown - 6 - 0"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestResolver_NoBackend(t *testing.T) {
	r := NewResolver(&fakeWindowing{}, staticProvider{})
	if got := r.PossibleMonitors(); len(got) != 1 || got[0] != None {
		t.Fatalf("expected only NONE, got %v", got)
	}
	if _, ok := r.MonitorForPort(customres.PortID{}); ok {
		t.Fatalf("expected no monitor without backend")
	}
	if s := r.PortToString(customres.PortID{GPU: 1, Port: 2}); s != "Unknown - 1 - 2" {
		t.Fatalf("unexpected display string %q", s)
	}
}
