package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrCancelled is returned when the user aborts the picker.
var ErrCancelled = errors.New("cancelled")

// PickMonitor asks the user to choose one of ports, starting at current.
func PickMonitor(ports []string, current string) (string, error) {
	if len(ports) == 0 {
		return "", fmt.Errorf("no monitors available")
	}
	if !IsInteractive() {
		return "", fmt.Errorf("monitor picker requires an interactive terminal")
	}

	opts := make([]huh.Option[string], 0, len(ports))
	for _, p := range ports {
		label := p
		if p == current {
			label += " (current)"
		}
		opts = append(opts, huh.NewOption(label, p))
	}

	selected := current
	err := huh.NewSelect[string]().
		Title("Output monitor").
		Description("The output window is locked to the selected monitor").
		Options(opts...).
		Value(&selected).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return selected, nil
}
