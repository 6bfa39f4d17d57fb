package node

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/displayout/internal/logging"
	"github.com/1broseidon/displayout/internal/present"
)

// ErrStopped is returned by Do once the runner has exited.
var ErrStopped = errors.New("runner stopped")

// InputSource produces the pipeline input for a frame.
type InputSource func(frame uint64) present.Texture

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	FrameRate float64
	Input     InputSource
	Logger    *slog.Logger
}

// Runner executes a single node on one locked OS thread. Callbacks, queued
// work and executions never overlap.
type Runner struct {
	interval time.Duration
	input    InputSource
	logger   *slog.Logger

	work chan func()
	done chan struct{}

	// only touched on the runner goroutine
	scheduled int
	frame     uint64

	mu    sync.RWMutex
	lists map[string][]string
	pins  map[string][]byte
}

var _ Host = (*Runner)(nil)

// NewRunner creates a runner. A non-positive frame rate means 60.
func NewRunner(cfg RunnerConfig) *Runner {
	rate := cfg.FrameRate
	if rate <= 0 {
		rate = 60
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	input := cfg.Input
	if input == nil {
		input = func(uint64) present.Texture { return present.Texture{} }
	}
	return &Runner{
		interval: time.Duration(float64(time.Second) / rate),
		input:    input,
		logger:   logging.Component(logger, "runner"),
		work:     make(chan func()),
		done:     make(chan struct{}),
		lists:    make(map[string][]string),
		pins:     make(map[string][]byte),
	}
}

// ScheduleNode implements Host. It must be called from the runner goroutine.
func (r *Runner) ScheduleNode(_ uuid.UUID, count int) {
	r.scheduled += count
}

// UpdateStringList implements Host.
func (r *Runner) UpdateStringList(listName string, values []string) {
	r.mu.Lock()
	r.lists[listName] = append([]string(nil), values...)
	r.mu.Unlock()
}

// SetPinValue implements Host.
func (r *Runner) SetPinValue(id uuid.UUID, pin string, raw []byte) {
	r.mu.Lock()
	r.pins[pinKey(id, pin)] = append([]byte(nil), raw...)
	r.mu.Unlock()
}

// StringList returns the last published values of a string list.
func (r *Runner) StringList(listName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.lists[listName]...)
}

// PinValue returns the last value a node wrote to pin.
func (r *Runner) PinValue(id uuid.UUID, pin string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.pins[pinKey(id, pin)]
	return append([]byte(nil), v...), ok
}

func pinKey(id uuid.UUID, pin string) string {
	return id.String() + "/" + pin
}

// Do runs fn on the runner goroutine between executions and waits for it.
func (r *Runner) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		fn()
	}
	select {
	case r.work <- job:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run enters n's execution context, starts its path and executes it at the
// configured frame rate while it keeps scheduling itself. It blocks until ctx
// is cancelled, then stops the path and exits the context.
func (r *Runner) Run(ctx context.Context, n Node) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)

	n.EnterContext()
	n.PathStart()
	r.logger.Info("node started", "node", n.ID(), "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.PathStop()
			n.ExitContext()
			r.logger.Info("node stopped", "node", n.ID())
			return
		case job := <-r.work:
			job()
		case <-ticker.C:
			r.step(ctx, n)
		}
	}
}

func (r *Runner) step(ctx context.Context, n Node) {
	if r.scheduled == 0 {
		return
	}
	r.scheduled--
	if err := n.Execute(ctx, ExecuteParams{Input: r.input(r.frame)}); err != nil {
		r.logger.Error("node execution failed", "node", n.ID(), "frame", r.frame, "error", err)
		r.scheduled = 0
		return
	}
	r.frame++
}

// Restart re-enters n's execution context after a fatal execution failure.
// It must be called through Do.
func (r *Runner) Restart(n Node) {
	n.ExitContext()
	n.EnterContext()
	n.PathStart()
}
