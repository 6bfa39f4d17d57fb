package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/displayout/internal/ipc"
)

const pollInterval = 2 * time.Second

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// model is the root bubbletea model for the dashboard.
type model struct {
	daemon Daemon

	activeTab   Tab
	outputTab   OutputTab
	monitorsTab MonitorsTab

	// nil while the daemon is unreachable
	status *ipc.StatusData

	width  int
	height int
}

func newModel(daemon Daemon, configPath string) model {
	m := model{
		daemon:      daemon,
		activeTab:   TabOutput,
		outputTab:   NewOutputTab(daemon),
		monitorsTab: NewMonitorsTab(daemon, configPath),
	}
	m.refreshDaemonState()
	return m
}

func (m *model) refreshDaemonState() {
	status, err := m.daemon.GetStatus()
	if err != nil {
		m.status = nil
		m.outputTab.SetStatus(nil)
		m.monitorsTab.SetPorts(nil)
		return
	}
	m.status = status
	m.outputTab.SetStatus(status)
	if ports, err := m.daemon.ListPorts(); err == nil {
		m.monitorsTab.SetPorts(ports)
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Hold off while a form is open so refreshes don't reset it.
		if !m.outputTab.editing {
			m.refreshDaemonState()
		}
		return m, tick()
	case refreshMsg:
		m.refreshDaemonState()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.outputTab, _ = m.outputTab.Update(subMsg)
		m.monitorsTab, _ = m.monitorsTab.Update(subMsg)
		return m, nil
	}

	// The form consumes keys; only ctrl+c escapes to quit.
	if m.activeTab == TabOutput && m.outputTab.editing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.outputTab, cmd = m.outputTab.Update(msg)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabOutput
			return m, nil
		case "2":
			m.activeTab = TabMonitors
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabOutput:
		m.outputTab, cmd = m.outputTab.Update(msg)
	case TabMonitors:
		m.monitorsTab, cmd = m.monitorsTab.Update(msg)
	}
	return m, cmd
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var content string
	switch m.activeTab {
	case TabOutput:
		content = m.outputTab.View()
	case TabMonitors:
		content = m.monitorsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.status, m.width),
		renderTabBar(m.activeTab, m.width),
		content,
		renderHelpBar(m.width),
	)
}
