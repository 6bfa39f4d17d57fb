package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/ipc"
)

// statusMsg is sent after a daemon action completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// refreshMsg asks the root model to re-read daemon state.
type refreshMsg struct{}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func refresh() tea.Msg { return refreshMsg{} }

// pinChange is one pin write produced by the output form.
type pinChange struct {
	pin   string
	value any
}

// outputChanges compares the edited form values with the node's current
// values and returns the pin writes needed, in apply order.
func outputChanges(cur displayout.Snapshot, width, height, refreshRate string, vsync, fullscreen bool) ([]pinChange, error) {
	w, err := parsePositiveUint(width)
	if err != nil {
		return nil, fmt.Errorf("width: %w", err)
	}
	h, err := parsePositiveUint(height)
	if err != nil {
		return nil, fmt.Errorf("height: %w", err)
	}
	hz, err := parsePositiveFloat(refreshRate)
	if err != nil {
		return nil, fmt.Errorf("refresh rate: %w", err)
	}

	var changes []pinChange
	if w != cur.Resolution.Width || h != cur.Resolution.Height {
		changes = append(changes, pinChange{displayout.PinResolution, displayout.Resolution{Width: w, Height: h}})
	}
	if hz != cur.RefreshRate {
		changes = append(changes, pinChange{displayout.PinRefreshRate, hz})
	}
	if vsync != cur.VSync {
		changes = append(changes, pinChange{displayout.PinVSync, vsync})
	}
	if fullscreen != cur.Fullscreen {
		changes = append(changes, pinChange{displayout.PinFullscreen, fullscreen})
	}
	return changes, nil
}

func parsePositiveUint(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not a whole number: %q", s)
	}
	if v == 0 {
		return 0, fmt.Errorf("must be > 0")
	}
	return uint32(v), nil
}

func parsePositiveFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be > 0")
	}
	return float32(v), nil
}

// OutputTab shows the output node and edits its pins.
type OutputTab struct {
	daemon Daemon
	status *ipc.StatusData

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fWidth      string
	fHeight     string
	fRefresh    string
	fVSync      bool
	fFullscreen bool

	statusText string
}

// NewOutputTab creates an OutputTab.
func NewOutputTab(daemon Daemon) OutputTab {
	return OutputTab{daemon: daemon}
}

// SetStatus updates the displayed daemon state.
func (o *OutputTab) SetStatus(status *ipc.StatusData) {
	o.status = status
}

// Update implements tea.Model.
func (o OutputTab) Update(msg tea.Msg) (OutputTab, tea.Cmd) {
	if o.editing {
		return o.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height
	case statusMsg:
		o.statusText = msg.text
		return o, clearStatusAfter()
	case clearStatusMsg:
		o.statusText = ""
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			if o.status == nil {
				return o, nil
			}
			o.startEditing()
			return o, o.form.Init()
		case "a":
			return o.call(displayout.FuncForceUpdateMonitorResolution, "custom resolution applied")
		case "r":
			return o.call(displayout.FuncRevertMonitorResolution, "custom resolution reverted")
		}
	}
	return o, nil
}

func (o OutputTab) call(function, done string) (OutputTab, tea.Cmd) {
	if o.status == nil {
		o.statusText = "daemon not connected"
		return o, clearStatusAfter()
	}
	if err := o.daemon.CallFunction(function); err != nil {
		o.statusText = fmt.Sprintf("error: %v", err)
	} else {
		o.statusText = done
	}
	return o, tea.Batch(refresh, clearStatusAfter())
}

func (o OutputTab) updateEditing(msg tea.Msg) (OutputTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			o.editing = false
			o.form = nil
			return o, nil
		}
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height
	}

	form, cmd := o.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		o.form = f
	}

	if o.form.State == huh.StateCompleted {
		o.editing = false
		o.form = nil
		o.statusText = o.applyForm()
		return o, tea.Batch(refresh, clearStatusAfter())
	}
	return o, cmd
}

func (o *OutputTab) startEditing() {
	cur := o.status.Node
	o.fWidth = strconv.FormatUint(uint64(cur.Resolution.Width), 10)
	o.fHeight = strconv.FormatUint(uint64(cur.Resolution.Height), 10)
	o.fRefresh = strconv.FormatFloat(float64(cur.RefreshRate), 'f', -1, 32)
	o.fVSync = cur.VSync
	o.fFullscreen = cur.Fullscreen

	validUint := func(s string) error { _, err := parsePositiveUint(s); return err }
	validFloat := func(s string) error { _, err := parsePositiveFloat(s); return err }

	w := o.width - 4
	if w < 40 {
		w = 40
	}

	o.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("width").
				Title("Width").
				Description("Swapchain and custom resolution width in pixels").
				Validate(validUint).
				Value(&o.fWidth),
			huh.NewInput().
				Key("height").
				Title("Height").
				Validate(validUint).
				Value(&o.fHeight),
			huh.NewInput().
				Key("refresh_rate").
				Title("Refresh Rate").
				Description("Hz, used when a custom resolution is applied").
				Validate(validFloat).
				Value(&o.fRefresh),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("vsync").
				Title("VSync").
				Value(&o.fVSync),
			huh.NewConfirm().
				Key("fullscreen").
				Title("Fullscreen").
				Description("Cover the monitor under the window and lock to it").
				Value(&o.fFullscreen),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	o.editing = true
}

// applyForm writes the edited pins and returns a status line.
func (o *OutputTab) applyForm() string {
	if o.status == nil {
		return "daemon not connected"
	}
	changes, err := outputChanges(o.status.Node, o.fWidth, o.fHeight, o.fRefresh, o.fVSync, o.fFullscreen)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if len(changes) == 0 {
		return "no changes"
	}
	for _, ch := range changes {
		if err := o.daemon.SetPin(ch.pin, ch.value); err != nil {
			return fmt.Sprintf("error: %s: %v", ch.pin, err)
		}
	}
	return fmt.Sprintf("updated %d pin(s)", len(changes))
}

// View implements tea.Model.
func (o OutputTab) View() string {
	if o.editing && o.form != nil {
		return o.viewEditing()
	}
	return o.viewDisplay()
}

func (o OutputTab) viewDisplay() string {
	if o.status == nil {
		style := lipgloss.NewStyle().
			Width(o.width).
			Height(o.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("Start the daemon with `displayout run`")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(22).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	n := o.status.Node
	window := "(none)"
	if n.Window != nil {
		window = fmt.Sprintf("%dx%d+%d+%d", n.Window.Width, n.Window.Height, n.Window.X, n.Window.Y)
	}

	lines := []string{
		"",
		row("State", n.State),
		row("Monitor", n.Monitor),
		row("Locked Port", displayOrDefault(n.LockedPort, "(unlocked)")),
		row("Custom Resolution", yesNo(n.CustomApplied)),
		"",
		row("Request", n.Request),
		row("Fullscreen", yesNo(n.Fullscreen)),
		row("VSync", yesNo(n.VSync)),
		"",
		row("Window", window),
		row("Swapchain", fmt.Sprintf("%dx%d, %d frames", n.Extent.Width, n.Extent.Height, n.FrameCount)),
		row("Uptime", (time.Duration(o.status.UptimeSeconds) * time.Second).String()),
		"",
		dimStyle.Render("  e: edit pins  a: apply custom resolution  r: revert"),
	}
	if !o.status.CustomResolution {
		lines = append(lines, dimStyle.Render("  custom resolution backend unavailable"))
	}
	if o.statusText != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("  "+o.statusText))
	}

	return lipgloss.NewStyle().
		Width(o.width).
		Height(o.height).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}

func (o OutputTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Output Pins") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(o.width).
		Height(o.height).
		Padding(1, 2).
		Render(header + "\n\n" + o.form.View())
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
