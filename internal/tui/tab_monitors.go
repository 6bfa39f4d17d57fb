package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/displayout/internal/config"
	"github.com/1broseidon/displayout/internal/displayout"
	"github.com/1broseidon/displayout/internal/ipc"
)

// portItem implements list.Item for the monitor list.
type portItem struct {
	name    string
	current bool
}

func (i portItem) Title() string {
	if i.current {
		return "* " + i.name
	}
	return "  " + i.name
}

func (i portItem) Description() string { return "" }
func (i portItem) FilterValue() string { return i.name }

func buildPortItems(ports *ipc.PortsData) []list.Item {
	if ports == nil {
		return nil
	}
	items := make([]list.Item, 0, len(ports.Ports))
	for _, p := range ports.Ports {
		items = append(items, portItem{name: p, current: p == ports.Current})
	}
	return items
}

// saveMonitorFn is stubbed in tests.
var saveMonitorFn = config.SaveMonitor

// MonitorsTab lists the selectable monitors and locks the output to one.
type MonitorsTab struct {
	list       list.Model
	daemon     Daemon
	configPath string
	ports      *ipc.PortsData

	statusText string

	width  int
	height int
}

// NewMonitorsTab creates a MonitorsTab.
func NewMonitorsTab(daemon Daemon, configPath string) MonitorsTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Monitors"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return MonitorsTab{
		list:       l,
		daemon:     daemon,
		configPath: configPath,
	}
}

// SetPorts replaces the listed monitors, keeping the cursor in range.
func (mt *MonitorsTab) SetPorts(ports *ipc.PortsData) {
	mt.ports = ports
	mt.list.SetItems(buildPortItems(ports))
}

func (mt MonitorsTab) selectedName() string {
	item, ok := mt.list.SelectedItem().(portItem)
	if !ok {
		return ""
	}
	return item.name
}

// Update implements tea.Model.
func (mt MonitorsTab) Update(msg tea.Msg) (MonitorsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		mt.width = msg.Width
		mt.height = msg.Height
		listHeight := mt.height - 2
		if listHeight < 1 {
			listHeight = 1
		}
		mt.list.SetSize(mt.width, listHeight)
		return mt, nil

	case statusMsg:
		mt.statusText = msg.text
		return mt, clearStatusAfter()

	case clearStatusMsg:
		mt.statusText = ""
		return mt, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return mt.selectCurrent()
		case "s":
			return mt.saveCurrent()
		}
	}

	var cmd tea.Cmd
	mt.list, cmd = mt.list.Update(msg)
	return mt, cmd
}

func (mt MonitorsTab) selectCurrent() (MonitorsTab, tea.Cmd) {
	name := mt.selectedName()
	if name == "" {
		return mt, nil
	}
	if mt.ports == nil {
		mt.statusText = "daemon not connected"
		return mt, clearStatusAfter()
	}
	if err := mt.daemon.SetPin(displayout.PinMonitor, name); err != nil {
		mt.statusText = fmt.Sprintf("error: %v", err)
	} else {
		mt.statusText = fmt.Sprintf("selected: %s", name)
	}
	return mt, tea.Batch(refresh, clearStatusAfter())
}

func (mt MonitorsTab) saveCurrent() (MonitorsTab, tea.Cmd) {
	name := mt.selectedName()
	if name == "" {
		return mt, nil
	}
	if err := saveMonitorFn(mt.configPath, name); err != nil {
		mt.statusText = fmt.Sprintf("error: %v", err)
	} else {
		mt.statusText = fmt.Sprintf("saved to config: %s", name)
	}
	return mt, clearStatusAfter()
}

// View implements tea.Model.
func (mt MonitorsTab) View() string {
	if mt.width == 0 || mt.height == 0 {
		return ""
	}
	body := lipgloss.NewStyle().
		Width(mt.width).
		Height(mt.height - 2).
		Render(mt.list.View())
	return lipgloss.JoinVertical(lipgloss.Left, body, mt.renderTabStatus())
}

func (mt MonitorsTab) renderTabStatus() string {
	left := ""
	if mt.statusText != "" {
		left = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render(mt.statusText)
	}

	right := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("enter: lock output  s: save to config")

	gap := mt.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(mt.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
