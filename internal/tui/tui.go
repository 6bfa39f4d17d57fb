// Package tui implements the interactive displayout dashboard and the
// standalone monitor picker.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/displayout/internal/ipc"
)

// Daemon is the subset of the daemon control surface the dashboard uses.
// *ipc.Client implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListPorts() (*ipc.PortsData, error)
	SetPin(pin string, value any) error
	CallFunction(name string) error
}

var _ Daemon = (*ipc.Client)(nil)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the dashboard against a running daemon. configPath selects the
// file monitor selections are saved to; empty uses the default location.
func Run(daemon Daemon, configPath string) error {
	if !IsInteractive() {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(daemon, configPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
