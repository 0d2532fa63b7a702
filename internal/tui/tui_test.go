package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/drei/wdpass/internal/device"
)

type fakeBackend struct {
	entries []DeviceEntry
	listErr error

	unlocked   []string
	passphrase string
	unlockErr  error

	mounted []string
}

func (f *fakeBackend) Devices() ([]DeviceEntry, error) {
	return f.entries, f.listErr
}

func (f *fakeBackend) Unlock(info device.Info, passphrase string) error {
	f.unlocked = append(f.unlocked, info.Path)
	f.passphrase = passphrase
	return f.unlockErr
}

func (f *fakeBackend) Mount(info device.Info) error {
	f.mounted = append(f.mounted, info.Path)
	return nil
}

func lockedEntry(path string) DeviceEntry {
	return DeviceEntry{
		Info:     device.Info{Path: path, Vendor: "WD", Model: "My Passport 0748"},
		Security: "Locked",
		Cipher:   "AES-256 ECB",
		Locked:   true,
	}
}

// drive runs one message through Update and any command it returns,
// feeding resulting messages back until the model settles.
func drive(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	for msg != nil {
		var cmd tea.Cmd
		_, cmd = m.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		if _, quit := msg.(tea.QuitMsg); quit {
			return
		}
	}
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	panic("unknown key " + s)
}

func TestRefreshPopulatesList(t *testing.T) {
	backend := &fakeBackend{entries: []DeviceEntry{lockedEntry("/dev/sdb")}}
	m := NewModel(backend)

	drive(t, m, m.Init()())

	require.Len(t, m.list.Items(), 1)
	require.Equal(t, "1 device(s)", m.status)
	require.False(t, m.statusE)
}

func TestRefreshErrorShowsStatus(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("sysfs walk failed")}
	m := NewModel(backend)

	drive(t, m, m.Init()())

	require.True(t, m.statusE)
	require.Contains(t, m.status, "sysfs walk failed")
}

func TestUnlockFlow(t *testing.T) {
	backend := &fakeBackend{entries: []DeviceEntry{lockedEntry("/dev/sdb")}}
	m := NewModel(backend)
	drive(t, m, m.Init()())

	drive(t, m, key("u"))
	require.Equal(t, statePassword, m.state)

	for _, r := range "hunter2" {
		drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	drive(t, m, key("enter"))

	require.Equal(t, []string{"/dev/sdb"}, backend.unlocked)
	require.Equal(t, "hunter2", backend.passphrase)
	require.Equal(t, stateList, m.state)
	// the successful unlock triggers a refresh, which settles the status line
	require.Equal(t, "1 device(s)", m.status)
}

func TestUnlockEscCancels(t *testing.T) {
	backend := &fakeBackend{entries: []DeviceEntry{lockedEntry("/dev/sdb")}}
	m := NewModel(backend)
	drive(t, m, m.Init()())

	drive(t, m, key("u"))
	drive(t, m, key("esc"))

	require.Equal(t, stateList, m.state)
	require.Empty(t, backend.unlocked)
}

func TestUnlockRefusedWhenNotLocked(t *testing.T) {
	entry := lockedEntry("/dev/sdb")
	entry.Security = "Unlocked"
	entry.Locked = false
	backend := &fakeBackend{entries: []DeviceEntry{entry}}
	m := NewModel(backend)
	drive(t, m, m.Init()())

	drive(t, m, key("u"))

	require.Equal(t, stateList, m.state)
	require.True(t, m.statusE)
}

func TestMount(t *testing.T) {
	backend := &fakeBackend{entries: []DeviceEntry{lockedEntry("/dev/sdb")}}
	m := NewModel(backend)
	drive(t, m, m.Init()())

	drive(t, m, key("m"))

	require.Equal(t, []string{"/dev/sdb"}, backend.mounted)
}
