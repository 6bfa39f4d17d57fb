package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/logging"
	"github.com/1broseidon/displayout/internal/node"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	// Reopen re-enters the node's context when its window is gone. Failed
	// attempts are retried with exponential backoff capped at MaxReopenDelay.
	Reopen         bool
	MaxReopenDelay time.Duration
	Logger         *slog.Logger
}

// Reconciler periodically republishes the monitor list and handles a node
// whose window was closed or lost.
type Reconciler struct {
	interval   time.Duration
	reopen     bool
	runner     *node.Runner
	node       OutputNode
	onDetached func()
	logger     *slog.Logger

	reopenBackoff *backoff.ExponentialBackOff
	nextReopen    time.Time
	now           func() time.Time
}

// NewReconciler creates a new reconciler with the given configuration.
// onDetached is called when the window is gone and Reopen is off.
func NewReconciler(cfg ReconcilerConfig, runner *node.Runner, n OutputNode, onDetached func()) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	maxDelay := cfg.MaxReopenDelay
	if maxDelay <= 0 {
		maxDelay = time.Minute
	}
	if maxDelay < interval {
		maxDelay = interval
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = interval
	bo.MaxInterval = maxDelay
	bo.MaxElapsedTime = 0

	return &Reconciler{
		interval:   interval,
		reopen:     cfg.Reopen,
		runner:     runner,
		node:       n,
		onDetached: onDetached,
		logger:     logging.Component(logger, "reconciler"),

		reopenBackoff: bo,
		now:           time.Now,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", logging.KeyError, err)
		}
	}()

	var detached bool
	err := r.runner.Do(ctx, func() {
		r.node.RefreshMonitors()
		detached = r.node.State() == displayout.StateDetached
	})
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("reconciler: node unavailable", logging.KeyError, err)
		}
		return
	}
	if !detached {
		return
	}

	if !r.reopen {
		r.logger.Info("reconciler: output window gone")
		if r.onDetached != nil {
			r.onDetached()
		}
		return
	}

	now := r.now()
	if now.Before(r.nextReopen) {
		return
	}
	r.logger.Info("reconciler: reopening output window")
	var state displayout.State
	err = r.runner.Do(ctx, func() {
		r.runner.Restart(r.node)
		state = r.node.State()
	})
	if err != nil {
		return
	}
	if state != displayout.StateDetached {
		r.reopenBackoff.Reset()
		r.nextReopen = time.Time{}
		return
	}
	wait := r.reopenBackoff.NextBackOff()
	r.nextReopen = now.Add(wait)
	r.logger.Warn("reconciler: reopen failed", "retry_in", wait.Round(time.Millisecond))
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
