// Package tui provides an interactive device browser built on Bubble Tea.
// It depends only on the Backend interface so tests can provide fakes.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drei/wdpass/internal/device"
)

// DeviceEntry is one row in the browser: the drive plus its probed state.
type DeviceEntry struct {
	Info     device.Info
	Security string
	Cipher   string
	Locked   bool
}

// Backend performs the actual device operations for the TUI.
type Backend interface {
	// Devices discovers drives and probes their security state.
	Devices() ([]DeviceEntry, error)
	// Unlock unlocks the drive with the given passphrase.
	Unlock(info device.Info, passphrase string) error
	// Mount triggers the bus rescan for an unlocked drive.
	Mount(info device.Info) error
}

type deviceItem struct {
	entry DeviceEntry
}

func (i deviceItem) Title() string { return i.entry.Info.Path + "  " + i.entry.Info.Identity() }
func (i deviceItem) Description() string {
	return fmt.Sprintf("%s · %s", i.entry.Security, i.entry.Cipher)
}
func (i deviceItem) FilterValue() string { return i.entry.Info.Identity() }

type uiState int

const (
	stateList uiState = iota
	statePassword
)

type (
	refreshDoneMsg struct {
		items []list.Item
		err   error
	}
	unlockDoneMsg struct{ err error }
	mountDoneMsg  struct{ err error }
)

var (
	statusOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model for the device browser.
type Model struct {
	backend Backend

	list  list.Model
	input textinput.Model
	state uiState

	status  string
	statusE bool
}

// NewModel constructs the browser model.
func NewModel(backend Backend) *Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "wdpass devices"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	in := textinput.New()
	in.Placeholder = "passphrase"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '*'

	return &Model{backend: backend, list: l, input: in}
}

// NewProgram constructs the tea.Program for the device browser.
func NewProgram(backend Backend) *tea.Program {
	return tea.NewProgram(NewModel(backend), tea.WithAltScreen())
}

// Init triggers the initial device refresh.
func (m *Model) Init() tea.Cmd {
	return m.refresh()
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.backend.Devices()
		if err != nil {
			return refreshDoneMsg{err: err}
		}
		items := make([]list.Item, 0, len(entries))
		for _, e := range entries {
			items = append(items, deviceItem{entry: e})
		}
		return refreshDoneMsg{items: items}
	}
}

// selected returns the highlighted device entry, if any.
func (m *Model) selected() (DeviceEntry, bool) {
	it, ok := m.list.SelectedItem().(deviceItem)
	if !ok {
		return DeviceEntry{}, false
	}
	return it.entry, true
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusE = isErr
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.setStatus("refresh failed: "+msg.err.Error(), true)
			return m, nil
		}
		cmd := m.list.SetItems(msg.items)
		m.setStatus(fmt.Sprintf("%d device(s)", len(msg.items)), false)
		return m, cmd

	case unlockDoneMsg:
		if msg.err != nil {
			m.setStatus("unlock failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("device unlocked", false)
		return m, m.refresh()

	case mountDoneMsg:
		if msg.err != nil {
			m.setStatus("mount failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("bus rescan issued", false)
		return m, m.refresh()

	case tea.KeyMsg:
		if m.state == statePassword {
			return m.updatePassword(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.setStatus("refreshing...", false)
		return m, m.refresh()
	case "u":
		entry, ok := m.selected()
		if !ok {
			m.setStatus("no device selected", true)
			return m, nil
		}
		if !entry.Locked {
			m.setStatus("device is not locked", true)
			return m, nil
		}
		m.state = statePassword
		m.input.SetValue("")
		return m, m.input.Focus()
	case "m":
		entry, ok := m.selected()
		if !ok {
			m.setStatus("no device selected", true)
			return m, nil
		}
		return m, func() tea.Msg { return mountDoneMsg{err: m.backend.Mount(entry.Info)} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updatePassword(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateList
		m.input.Blur()
		m.setStatus("unlock cancelled", false)
		return m, nil
	case "enter":
		entry, ok := m.selected()
		passphrase := m.input.Value()
		m.state = stateList
		m.input.Blur()
		if !ok {
			m.setStatus("no device selected", true)
			return m, nil
		}
		m.setStatus("unlocking...", false)
		return m, func() tea.Msg { return unlockDoneMsg{err: m.backend.Unlock(entry.Info, passphrase)} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m *Model) View() string {
	if m.state == statePassword {
		entry, _ := m.selected()
		return fmt.Sprintf("Unlock %s\n\n%s\n\n%s", entry.Info.Path, m.input.View(),
			helpStyle.Render("enter: unlock • esc: cancel"))
	}
	status := m.status
	if m.statusE {
		status = statusErrStyle.Render(status)
	} else {
		status = statusOKStyle.Render(status)
	}
	help := helpStyle.Render("u: unlock • m: mount • r: refresh • q: quit")
	return m.list.View() + "\n" + status + "\n" + help
}
