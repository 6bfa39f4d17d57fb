package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/node"
)

// fakeNode is only touched on the runner goroutine, except for the atomic
// counters.
type fakeNode struct {
	id    uuid.UUID
	host  node.Host
	state displayout.State
	cfg   displayout.Config
	pins  map[string][]byte
	calls []string

	refreshes atomic.Int32
	enters    atomic.Int32
	failEnter atomic.Bool
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		id:   uuid.New(),
		cfg:  displayout.DefaultConfig(),
		pins: map[string][]byte{},
	}
}

func (n *fakeNode) ID() uuid.UUID { return n.id }

func (n *fakeNode) Execute(context.Context, node.ExecuteParams) error {
	n.host.ScheduleNode(n.id, 1)
	return nil
}

func (n *fakeNode) EnterContext() {
	n.enters.Add(1)
	if n.failEnter.Load() {
		return
	}
	n.state = displayout.StateWindowedUnlocked
}

func (n *fakeNode) ExitContext() { n.state = displayout.StateDetached }
func (n *fakeNode) PathStart()   { n.host.ScheduleNode(n.id, 1) }
func (n *fakeNode) PathStop()    {}

func (n *fakeNode) PinChanged(pin string, raw []byte) {
	n.pins[pin] = raw
}

func (n *fakeNode) Functions() []string {
	return []string{displayout.FuncForceUpdateMonitorResolution}
}

func (n *fakeNode) CallFunction(name string) error {
	if name != displayout.FuncForceUpdateMonitorResolution {
		return node.ErrUnknownFunction
	}
	n.calls = append(n.calls, name)
	return nil
}

func (n *fakeNode) State() displayout.State   { return n.state }
func (n *fakeNode) Config() displayout.Config { return n.cfg }

func (n *fakeNode) Snapshot() displayout.Snapshot {
	return displayout.Snapshot{NodeID: n.id.String(), State: n.state.String(), Monitor: n.cfg.Monitor}
}

func (n *fakeNode) MonitorListName() string { return "Monitor_" + n.id.String() }

func (n *fakeNode) RefreshMonitors() {
	n.refreshes.Add(1)
	n.host.UpdateStringList(n.MonitorListName(), []string{"NONE", "Left Panel - 1 - 0"})
}

func startRunner(t *testing.T, n *fakeNode) *node.Runner {
	t.Helper()
	r := node.NewRunner(node.RunnerConfig{FrameRate: 200})
	n.host = r
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, n)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func TestService_CommandsRunOnRunner(t *testing.T) {
	n := newFakeNode()
	r := startRunner(t, n)
	svc := NewService(r, n, true)
	ctx := context.Background()

	status, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Node.State != "windowed-unlocked" || !status.CustomResolution || !status.DaemonRunning {
		t.Fatalf("unexpected status %+v", status)
	}

	ports, err := svc.Ports(ctx)
	if err != nil {
		t.Fatalf("Ports: %v", err)
	}
	if len(ports.Ports) != 2 || ports.Current != "NONE" {
		t.Fatalf("unexpected ports %+v", ports)
	}

	if err := svc.SetPin(ctx, displayout.PinResolution, json.RawMessage(`"1280x720"`)); err != nil {
		t.Fatalf("SetPin: %v", err)
	}
	if err := svc.SetPin(ctx, displayout.PinInput, json.RawMessage(`1`)); err == nil {
		t.Fatalf("expected Input pin to be rejected")
	}
	if err := svc.CallFunction(ctx, displayout.FuncForceUpdateMonitorResolution); err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if err := svc.CallFunction(ctx, "Nope"); !errors.Is(err, node.ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}

	var res []byte
	var calls int
	if err := r.Do(ctx, func() {
		res = n.pins[displayout.PinResolution]
		calls = len(n.calls)
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	w, h, err := node.DecodeVec2u(res)
	if err != nil || w != 1280 || h != 720 {
		t.Fatalf("expected 1280x720 on the node, got %dx%d (%v)", w, h, err)
	}
	if calls != 1 {
		t.Fatalf("expected one function call, got %d", calls)
	}
}

func TestReconciler_StopsWhenDetached(t *testing.T) {
	n := newFakeNode()
	r := startRunner(t, n)
	if err := r.Do(context.Background(), func() { n.ExitContext() }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	var gone atomic.Bool
	rec := NewReconciler(ReconcilerConfig{Interval: time.Hour}, r, n, func() { gone.Store(true) })
	rec.ReconcileNow(context.Background())

	if !gone.Load() {
		t.Fatalf("expected onDetached to be called")
	}
	if n.refreshes.Load() == 0 {
		t.Fatalf("expected monitor list refresh")
	}
	if n.enters.Load() != 1 {
		t.Fatalf("expected no reopen, got %d enters", n.enters.Load())
	}
}

func TestReconciler_ReopensWindow(t *testing.T) {
	n := newFakeNode()
	r := startRunner(t, n)
	ctx := context.Background()
	if err := r.Do(ctx, func() { n.ExitContext() }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	rec := NewReconciler(ReconcilerConfig{Interval: time.Hour, Reopen: true}, r, n, func() {
		t.Errorf("onDetached must not run when reopening")
	})
	rec.ReconcileNow(ctx)

	var state displayout.State
	if err := r.Do(ctx, func() { state = n.State() }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if state != displayout.StateWindowedUnlocked {
		t.Fatalf("expected reopened window, got %v", state)
	}
	if n.enters.Load() != 2 {
		t.Fatalf("expected a second EnterContext, got %d", n.enters.Load())
	}
}

func TestReconciler_BacksOffFailedReopen(t *testing.T) {
	n := newFakeNode()
	r := startRunner(t, n)
	ctx := context.Background()
	if err := r.Do(ctx, func() { n.ExitContext() }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	n.failEnter.Store(true)

	rec := NewReconciler(ReconcilerConfig{Interval: time.Second, Reopen: true}, r, n, nil)
	clock := time.Unix(1000, 0)
	rec.now = func() time.Time { return clock }

	rec.ReconcileNow(ctx)
	if got := n.enters.Load(); got != 2 {
		t.Fatalf("expected one reopen attempt, got %d enters", got)
	}

	rec.ReconcileNow(ctx)
	if got := n.enters.Load(); got != 2 {
		t.Fatalf("expected retry to wait for backoff, got %d enters", got)
	}

	n.failEnter.Store(false)
	clock = clock.Add(time.Minute)
	rec.ReconcileNow(ctx)
	if got := n.enters.Load(); got != 3 {
		t.Fatalf("expected retry after backoff, got %d enters", got)
	}
	if !rec.nextReopen.IsZero() {
		t.Fatalf("expected backoff reset after successful reopen")
	}
}

func TestReconciler_AttachedNodeOnlyRefreshes(t *testing.T) {
	n := newFakeNode()
	r := startRunner(t, n)

	rec := NewReconciler(ReconcilerConfig{Interval: time.Hour, Reopen: true}, r, n, nil)
	rec.ReconcileNow(context.Background())

	if n.enters.Load() != 1 {
		t.Fatalf("expected no restart, got %d enters", n.enters.Load())
	}
	if n.refreshes.Load() != 1 {
		t.Fatalf("expected one refresh, got %d", n.refreshes.Load())
	}
}

func TestNextMonitor(t *testing.T) {
	list := []string{"NONE", "Left - 1 - 0", "Right - 1 - 1"}
	cases := []struct {
		name    string
		list    []string
		current string
		want    string
	}{
		{"from none", list, "NONE", "Left - 1 - 0"},
		{"advance", list, "Left - 1 - 0", "Right - 1 - 1"},
		{"wrap", list, "Right - 1 - 1", "Left - 1 - 0"},
		{"current gone", list, "Gone - 1 - 5", "Left - 1 - 0"},
		{"only none", []string{"NONE"}, "NONE", ""},
		{"empty", nil, "NONE", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextMonitor(tc.list, tc.current); got != tc.want {
				t.Fatalf("nextMonitor(%v, %q) = %q, want %q", tc.list, tc.current, got, tc.want)
			}
		})
	}
}

func TestService_HotkeyActions(t *testing.T) {
	n := newFakeNode()
	r := startRunner(t, n)
	svc := NewService(r, n, true)
	ctx := context.Background()

	if err := svc.ToggleFullscreen(ctx); err != nil {
		t.Fatalf("ToggleFullscreen: %v", err)
	}
	next, err := svc.NextMonitor(ctx)
	if err != nil {
		t.Fatalf("NextMonitor: %v", err)
	}
	if next != "Left Panel - 1 - 0" {
		t.Fatalf("NextMonitor = %q", next)
	}

	var fullscreen, monitor []byte
	if err := r.Do(ctx, func() {
		fullscreen = n.pins[displayout.PinFullscreen]
		monitor = n.pins[displayout.PinMonitor]
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if on, err := node.DecodeBool(fullscreen); err != nil || on != !n.cfg.Fullscreen {
		t.Fatalf("fullscreen pin = %v, %v", on, err)
	}
	if m := node.DecodeString(monitor); m != next {
		t.Fatalf("monitor pin = %q, want %q", m, next)
	}
}
