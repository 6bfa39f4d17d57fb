// Package daemon hosts a running output node: it serves control requests
// on the node's goroutine and keeps the node's monitor list current.
package daemon

import (
	"context"
	"encoding/json"
	"time"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/ipc"
	"github.com/1broseidon/displayout/internal/node"
	"github.com/1broseidon/displayout/internal/portname"
)

// OutputNode is the node surface the daemon drives.
type OutputNode interface {
	node.Node
	State() displayout.State
	Config() displayout.Config
	Snapshot() displayout.Snapshot
	MonitorListName() string
	RefreshMonitors()
}

// Service answers IPC commands. Every command that touches the node runs
// through the runner so it never overlaps an execution.
type Service struct {
	runner           *node.Runner
	node             OutputNode
	customResolution bool
	started          time.Time
}

var _ ipc.Handler = (*Service)(nil)

// NewService creates a service. customResolution reports whether a mode
// override backend was created.
func NewService(runner *node.Runner, n OutputNode, customResolution bool) *Service {
	return &Service{
		runner:           runner,
		node:             n,
		customResolution: customResolution,
		started:          time.Now(),
	}
}

func (s *Service) Status(ctx context.Context) (ipc.StatusData, error) {
	var snap displayout.Snapshot
	if err := s.runner.Do(ctx, func() { snap = s.node.Snapshot() }); err != nil {
		return ipc.StatusData{}, err
	}
	return ipc.StatusData{
		Node:             snap,
		CustomResolution: s.customResolution,
		UptimeSeconds:    int64(time.Since(s.started).Seconds()),
		DaemonRunning:    true,
	}, nil
}

func (s *Service) Ports(ctx context.Context) (ipc.PortsData, error) {
	var current string
	err := s.runner.Do(ctx, func() {
		s.node.RefreshMonitors()
		current = s.node.Config().Monitor
	})
	if err != nil {
		return ipc.PortsData{}, err
	}
	return ipc.PortsData{
		Ports:   s.runner.StringList(s.node.MonitorListName()),
		Current: current,
	}, nil
}

func (s *Service) SetPin(ctx context.Context, pin string, value json.RawMessage) error {
	raw, err := EncodePin(pin, value)
	if err != nil {
		return err
	}
	return s.runner.Do(ctx, func() { s.node.PinChanged(pin, raw) })
}

func (s *Service) CallFunction(ctx context.Context, name string) error {
	var callErr error
	if err := s.runner.Do(ctx, func() { callErr = s.node.CallFunction(name) }); err != nil {
		return err
	}
	return callErr
}

// ToggleFullscreen flips the Fullscreen pin.
func (s *Service) ToggleFullscreen(ctx context.Context) error {
	return s.runner.Do(ctx, func() {
		s.node.PinChanged(displayout.PinFullscreen, node.EncodeBool(!s.node.Config().Fullscreen))
	})
}

// NextMonitor locks the output to the monitor after the current one in the
// published list, wrapping around. It returns the selected monitor, or ""
// when there is none to select.
func (s *Service) NextMonitor(ctx context.Context) (string, error) {
	var next string
	err := s.runner.Do(ctx, func() {
		s.node.RefreshMonitors()
		next = nextMonitor(s.runner.StringList(s.node.MonitorListName()), s.node.Config().Monitor)
		if next != "" {
			s.node.PinChanged(displayout.PinMonitor, node.EncodeString(next))
		}
	})
	return next, err
}

func nextMonitor(list []string, current string) string {
	var candidates []string
	for _, m := range list {
		if !portname.IsNone(m) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	for i, m := range candidates {
		if m == current {
			return candidates[(i+1)%len(candidates)]
		}
	}
	return candidates[0]
}
