package keyring

import (
	"testing"

	"github.com/stretchr/testify/require"
	zkeyring "github.com/zalando/go-keyring"
)

func TestSystemStoreRoundTrip(t *testing.T) {
	zkeyring.MockInit()

	s := &SystemStore{}
	block := []byte{0x01, 0x02, 0xFF, 0x00, 0x7F}
	require.NoError(t, s.Save("WD My Passport 0820", block))

	got, err := s.Load("WD My Passport 0820")
	require.NoError(t, err)
	require.Equal(t, block, got)

	require.NoError(t, s.Delete("WD My Passport 0820"))
	_, err = s.Load("WD My Passport 0820")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSystemStoreLoadMissing(t *testing.T) {
	zkeyring.MockInit()

	s := &SystemStore{}
	_, err := s.Load("never-saved")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSystemStoreServiceOverride(t *testing.T) {
	zkeyring.MockInit()

	a := &SystemStore{Service: "wdpass-test-a"}
	b := &SystemStore{Service: "wdpass-test-b"}
	require.NoError(t, a.Save("dev", []byte{0xAA}))

	_, err := b.Load("dev")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Save("dev", []byte{0x01}))

	got, err := s.Load("dev")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, got)

	// Mutating the returned slice must not affect the stored copy.
	got[0] = 0xFF
	again, err := s.Load("dev")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, again)

	require.NoError(t, s.Delete("dev"))
	require.ErrorIs(t, s.Delete("dev"), ErrNotFound)
}
