package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/ipc"
)

type fakeDaemon struct {
	down  bool
	ports []string
	pins  []string
	vals  []any
	calls []string
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if d.down {
		return nil, errors.New("daemon not running")
	}
	return &ipc.StatusData{Node: displayout.Snapshot{
		State:       "windowed-unlocked",
		Monitor:     "NONE",
		Resolution:  displayout.Resolution{Width: 1920, Height: 1080},
		RefreshRate: 60,
	}}, nil
}

func (d *fakeDaemon) ListPorts() (*ipc.PortsData, error) {
	if d.down {
		return nil, errors.New("daemon not running")
	}
	return &ipc.PortsData{Ports: d.ports, Current: "NONE"}, nil
}

func (d *fakeDaemon) SetPin(pin string, value any) error {
	d.pins = append(d.pins, pin)
	d.vals = append(d.vals, value)
	return nil
}

func (d *fakeDaemon) CallFunction(name string) error {
	d.calls = append(d.calls, name)
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOutputChanges(t *testing.T) {
	cur := displayout.Snapshot{Resolution: displayout.Resolution{Width: 1920, Height: 1080}, RefreshRate: 60}

	changes, err := outputChanges(cur, "1920", "1080", "60", false, false)
	if err != nil || len(changes) != 0 {
		t.Fatalf("expected no changes, got %v (%v)", changes, err)
	}

	changes, err = outputChanges(cur, "1280", " 720", "50", true, true)
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	want := []string{displayout.PinResolution, displayout.PinRefreshRate, displayout.PinVSync, displayout.PinFullscreen}
	if len(changes) != len(want) {
		t.Fatalf("expected %d changes, got %v", len(want), changes)
	}
	for i, ch := range changes {
		if ch.pin != want[i] {
			t.Fatalf("change %d: expected %s, got %s", i, want[i], ch.pin)
		}
	}
	if res := changes[0].value.(displayout.Resolution); res.Width != 1280 || res.Height != 720 {
		t.Fatalf("unexpected resolution %+v", res)
	}

	for _, bad := range [][3]string{{"0", "720", "60"}, {"1280", "x", "60"}, {"1280", "720", "-1"}} {
		if _, err := outputChanges(cur, bad[0], bad[1], bad[2], false, false); err == nil {
			t.Fatalf("expected %v to be rejected", bad)
		}
	}
}

func TestModel_TabSwitchingAndQuit(t *testing.T) {
	m := newModel(&fakeDaemon{}, "")
	if m.activeTab != TabOutput {
		t.Fatalf("expected output tab first")
	}
	next, _ := m.Update(key("tab"))
	m = next.(model)
	if m.activeTab != TabMonitors {
		t.Fatalf("expected monitors tab after tab key, got %v", m.activeTab)
	}
	next, _ = m.Update(key("1"))
	m = next.(model)
	if m.activeTab != TabOutput {
		t.Fatalf("expected output tab after '1', got %v", m.activeTab)
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestModel_DaemonDown(t *testing.T) {
	m := newModel(&fakeDaemon{down: true}, "")
	if m.status != nil {
		t.Fatalf("expected no status when daemon is down")
	}
	next, _ := m.Update(key("a"))
	m = next.(model)
	if m.outputTab.statusText != "daemon not connected" {
		t.Fatalf("expected not connected message, got %q", m.outputTab.statusText)
	}
}

func TestOutputTab_ApplyAndRevert(t *testing.T) {
	d := &fakeDaemon{}
	m := newModel(d, "")
	next, _ := m.Update(key("a"))
	m = next.(model)
	next, _ = m.Update(key("r"))
	m = next.(model)
	if len(d.calls) != 2 || d.calls[0] != displayout.FuncForceUpdateMonitorResolution || d.calls[1] != displayout.FuncRevertMonitorResolution {
		t.Fatalf("unexpected calls %v", d.calls)
	}
}

func TestMonitorsTab_SelectAndSave(t *testing.T) {
	d := &fakeDaemon{ports: []string{"NONE", "Left Panel - 1 - 0"}}
	m := newModel(d, "/tmp/displayout.yaml")
	next, _ := m.Update(key("2"))
	m = next.(model)
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)
	next, _ = m.Update(key("down"))
	m = next.(model)
	if got := m.monitorsTab.selectedName(); got != "Left Panel - 1 - 0" {
		t.Fatalf("expected second port selected, got %q", got)
	}

	next, _ = m.Update(key("enter"))
	m = next.(model)
	if len(d.pins) != 1 || d.pins[0] != displayout.PinMonitor || d.vals[0] != "Left Panel - 1 - 0" {
		t.Fatalf("expected monitor pin write, got %v %v", d.pins, d.vals)
	}

	var savedPath, savedMonitor string
	orig := saveMonitorFn
	saveMonitorFn = func(path, monitor string) error {
		savedPath, savedMonitor = path, monitor
		return nil
	}
	t.Cleanup(func() { saveMonitorFn = orig })

	next, _ = m.Update(key("s"))
	m = next.(model)
	if savedPath != "/tmp/displayout.yaml" || savedMonitor != "Left Panel - 1 - 0" {
		t.Fatalf("unexpected save %q %q", savedPath, savedMonitor)
	}
}

func TestBuildPortItems_MarksCurrent(t *testing.T) {
	items := buildPortItems(&ipc.PortsData{Ports: []string{"NONE", "A - 1 - 0"}, Current: "A - 1 - 0"})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].(portItem).current || !items[1].(portItem).current {
		t.Fatalf("expected only the second item marked current")
	}
	if items[1].(portItem).Title() != "* A - 1 - 0" {
		t.Fatalf("unexpected title %q", items[1].(portItem).Title())
	}
}

func TestRenderStatusBar(t *testing.T) {
	if got := renderStatusBar(nil, 200); !strings.Contains(got, "daemon not running") {
		t.Fatalf("nil status rendered %q", got)
	}

	status := &ipc.StatusData{
		CustomResolution: true,
		Node: displayout.Snapshot{
			State:         "locked-fullscreen",
			LockedPort:    "DP-1 - 0 - 1",
			CustomApplied: true,
			Resolution:    displayout.Resolution{Width: 1280, Height: 720},
			RefreshRate:   50,
		},
	}
	got := renderStatusBar(status, 200)
	for _, want := range []string{"locked-fullscreen", "on DP-1 - 0 - 1", "custom 1280x720@50Hz"} {
		if !strings.Contains(got, want) {
			t.Fatalf("status bar %q missing %q", got, want)
		}
	}
}
