package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/displayout/internal/ipc"
)

// Tab identifies a dashboard tab.
type Tab int

const (
	TabOutput Tab = iota
	TabMonitors
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabOutput:
		return "Output"
	case TabMonitors:
		return "Monitors"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")
)

func renderTabBar(active Tab, width int) string {
	labels := make([]string, 0, tabCount)
	for i := Tab(0); i < tabCount; i++ {
		style := inactiveTabStyle
		if i == active {
			style = activeTabStyle
		}
		labels = append(labels, style.Render(fmt.Sprintf("%d:%s", int(i)+1, i)))
	}
	return tabBarStyle.Width(width).Render(strings.Join(labels, tabGap.Render()))
}

// stateColors maps node states (as reported over IPC) to badge colors.
var stateColors = map[string]lipgloss.Color{
	"detached":          lipgloss.Color("241"),
	"windowed-unlocked": lipgloss.Color("39"),
	"windowed-locked":   lipgloss.Color("214"),
	"locked-fullscreen": lipgloss.Color("205"),
}

func stateBadge(state string) string {
	color, ok := stateColors[state]
	if !ok {
		color = lipgloss.Color("250")
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(state)
}

// renderStatusBar renders the daemon connection line.
func renderStatusBar(status *ipc.StatusData, width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)

	if status == nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		return style.Render(dot + " daemon not running")
	}

	dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	parts := []string{dot + " " + stateBadge(status.Node.State)}
	if status.Node.LockedPort != "" {
		parts = append(parts, "on "+status.Node.LockedPort)
	}
	if status.Node.CustomApplied {
		parts = append(parts, fmt.Sprintf("custom %dx%d@%gHz",
			status.Node.Resolution.Width, status.Node.Resolution.Height, status.Node.RefreshRate))
	} else if !status.CustomResolution {
		parts = append(parts, "custom resolution unavailable")
	}
	return style.Render(strings.Join(parts, "  "))
}

func renderHelpBar(width int) string {
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render("tab/shift-tab switch  1-2 jump  q quit")
}
