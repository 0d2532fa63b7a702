// Package passport implements the vendor-specific SCSI protocol of
// Western Digital My Passport drives: encryption status, Handy Store
// access, unlock, password change, and secure erase.
package passport

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/drei/wdpass/internal/scsi"
)

// Sentinel errors for drive state preconditions.
var (
	ErrAlreadyUnlocked   = errors.New("device is already unlocked")
	ErrNotUnlocked       = errors.New("device has to be unlocked or without encryption")
	ErrUnsupportedCipher = errors.New("unsupported cipher")
	ErrBadSignature      = errors.New("wrong encryption status signature")
)

// transport is the raw command channel to the drive. *scsi.Device satisfies
// it; tests provide fakes.
type transport interface {
	Read(cdb []byte, n int) ([]byte, error)
	Write(cdb []byte, data []byte) error
}

// Drive drives the vendor protocol over an open SCSI device.
type Drive struct {
	t transport
}

// NewDrive wraps an open SCSI device.
func NewDrive(dev *scsi.Device) *Drive { return &Drive{t: dev} }

// newDrive is the test constructor taking any transport.
func newDrive(t transport) *Drive { return &Drive{t: t} }

// Status is the result of the encryption status command.
type Status struct {
	Security SecurityStatus
	Cipher   CipherID
	// KeyResetEnabler changes on every read; it must be fetched immediately
	// before a secure erase is issued.
	KeyResetEnabler [4]byte
}

// EncryptionStatus queries the drive's current security state.
func (d *Drive) EncryptionStatus() (Status, error) {
	cdb := []byte{0xC0, 0x45, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x30, 0x00}
	data, err := d.t.Read(cdb, 0x30)
	if err != nil {
		return Status{}, fmt.Errorf("encryption status: %w", err)
	}
	if data[0] != 0x45 {
		return Status{}, fmt.Errorf("%w: %#02x", ErrBadSignature, data[0])
	}
	st := Status{
		Security: SecurityStatus(data[3]),
		Cipher:   CipherID(data[4]),
	}
	copy(st.KeyResetEnabler[:], data[8:12])
	log.Debug("encryption status", "security", st.Security, "cipher", st.Cipher)
	return st, nil
}
