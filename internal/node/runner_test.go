package node

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingNode struct {
	id        uuid.UUID
	host      Host
	failAfter int32

	executes  atomic.Int32
	entered   atomic.Int32
	exited    atomic.Int32
	pathStops atomic.Int32
	lastPin   atomic.Value
}

func (n *countingNode) ID() uuid.UUID { return n.id }

func (n *countingNode) Execute(ctx context.Context, _ ExecuteParams) error {
	c := n.executes.Add(1)
	if n.failAfter > 0 && c >= n.failAfter {
		return errors.New("boom")
	}
	n.host.ScheduleNode(n.id, 1)
	return nil
}

func (n *countingNode) EnterContext() { n.entered.Add(1) }
func (n *countingNode) ExitContext()  { n.exited.Add(1) }
func (n *countingNode) PathStart()    { n.host.ScheduleNode(n.id, 1) }
func (n *countingNode) PathStop()     { n.pathStops.Add(1) }
func (n *countingNode) PinChanged(pin string, raw []byte) {
	n.lastPin.Store(pin + "=" + DecodeString(raw))
}
func (n *countingNode) Functions() []string { return nil }
func (n *countingNode) CallFunction(string) error {
	return ErrUnknownFunction
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunner_ExecutesWhileScheduledAndStopsCleanly(t *testing.T) {
	r := NewRunner(RunnerConfig{FrameRate: 500})
	n := &countingNode{id: uuid.New(), host: r}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		r.Run(ctx, n)
		close(finished)
	}()

	waitFor(t, "executions", func() bool { return n.executes.Load() >= 3 })

	if err := r.Do(context.Background(), func() {
		n.PinChanged("Monitor", EncodeString("NONE"))
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := n.lastPin.Load(); got != "Monitor=NONE" {
		t.Fatalf("unexpected pin %v", got)
	}

	cancel()
	<-finished
	if n.entered.Load() != 1 || n.exited.Load() != 1 || n.pathStops.Load() != 1 {
		t.Fatalf("expected one enter/exit/path stop, got %d/%d/%d", n.entered.Load(), n.exited.Load(), n.pathStops.Load())
	}
	if err := r.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after exit, got %v", err)
	}
}

func TestRunner_FailureStopsScheduling(t *testing.T) {
	r := NewRunner(RunnerConfig{FrameRate: 500})
	n := &countingNode{id: uuid.New(), host: r, failAfter: 2}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx, n)

	waitFor(t, "failure", func() bool { return n.executes.Load() >= 2 })
	time.Sleep(30 * time.Millisecond)
	if got := n.executes.Load(); got != 2 {
		t.Fatalf("expected execution to stop after failure, got %d executions", got)
	}
}

func TestRunner_HostState(t *testing.T) {
	r := NewRunner(RunnerConfig{})
	id := uuid.New()
	r.UpdateStringList("Monitor_x", []string{"NONE", "A - 1 - 0"})
	r.SetPinValue(id, "Monitor", EncodeString("A - 1 - 0"))

	if got := r.StringList("Monitor_x"); len(got) != 2 || got[1] != "A - 1 - 0" {
		t.Fatalf("unexpected list %v", got)
	}
	raw, ok := r.PinValue(id, "Monitor")
	if !ok || DecodeString(raw) != "A - 1 - 0" {
		t.Fatalf("unexpected pin value %q ok=%v", raw, ok)
	}
	if _, ok := r.PinValue(uuid.New(), "Monitor"); ok {
		t.Fatalf("expected no value for other node")
	}
}
