// Package node is the host side of an output node: the lifecycle callbacks a
// node implements, the host services it calls back into, and a Runner that
// drives one node on a dedicated goroutine.
package node

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/1broseidon/displayout/internal/present"
)

// ErrUnknownFunction is returned by CallFunction for names a node does not export.
var ErrUnknownFunction = errors.New("unknown node function")

// ExecuteParams carries one execution's pin inputs.
type ExecuteParams struct {
	Input present.Texture
}

// Node is the callback surface a host drives. Every call happens on the
// same goroutine.
type Node interface {
	ID() uuid.UUID
	Execute(ctx context.Context, params ExecuteParams) error
	EnterContext()
	ExitContext()
	PathStart()
	PathStop()
	PinChanged(pin string, raw []byte)
	Functions() []string
	CallFunction(name string) error
}

// Host is the set of services a node may call.
type Host interface {
	// ScheduleNode requests count more executions of the node.
	ScheduleNode(id uuid.UUID, count int)
	// UpdateStringList publishes the valid values of a string list.
	UpdateStringList(listName string, values []string)
	// SetPinValue writes a pin value back to the host.
	SetPinValue(id uuid.UUID, pin string, raw []byte)
}
