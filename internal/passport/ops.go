package passport

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/charmbracelet/log"
)

// payloadHeader builds the 8-byte block header shared by unlock and
// password-change payloads: signature byte, flags, and the big-endian key
// length.
func payloadHeader(flags byte, keyLen int) []byte {
	h := []byte{0x45, 0x00, 0x00, flags, 0x00, 0x00, 0x00, 0x00}
	binary.BigEndian.PutUint16(h[6:8], uint16(keyLen))
	return h
}

// Unlock sends the derived password block to a locked drive.
// Returns ErrAlreadyUnlocked when the drive does not need unlocking.
func (d *Drive) Unlock(block []byte) error {
	st, err := d.EncryptionStatus()
	if err != nil {
		return err
	}
	switch st.Security {
	case StatusLocked:
	case StatusNoLock, StatusUnlocked:
		return ErrAlreadyUnlocked
	default:
		return fmt.Errorf("wrong device status: %s", st.Security)
	}
	keyLen, err := st.Cipher.KeyLength()
	if err != nil {
		return err
	}
	if len(block) < keyLen {
		return fmt.Errorf("password block too short: got %d bytes, cipher %s needs %d", len(block), st.Cipher, keyLen)
	}

	cdb := []byte{0xC1, 0xE1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, byte(keyLen + 8), 0x00}
	payload := append(payloadHeader(0x00, keyLen), block[:keyLen]...)
	log.Debug("unlock", "cipher", st.Cipher, "keylen", keyLen)
	if err := d.t.Write(cdb, payload); err != nil {
		return fmt.Errorf("unlock rejected (wrong password?): %w", err)
	}
	return nil
}

// ChangePassword replaces the drive password. A nil or empty old block
// means the drive currently has no password; a nil or empty new block
// disables encryption locking entirely. The drive must be unlocked (or
// without a lock) first.
func (d *Drive) ChangePassword(oldBlock, newBlock []byte) error {
	st, err := d.EncryptionStatus()
	if err != nil {
		return err
	}
	if st.Security != StatusUnlocked && st.Security != StatusNoLock {
		return ErrNotUnlocked
	}
	keyLen, err := st.Cipher.KeyLength()
	if err != nil {
		return err
	}

	var flags byte
	old := make([]byte, keyLen)
	if len(oldBlock) > 0 {
		if len(oldBlock) < keyLen {
			return fmt.Errorf("old password block too short: got %d bytes, need %d", len(oldBlock), keyLen)
		}
		copy(old, oldBlock[:keyLen])
		flags |= 0x10
	}
	next := make([]byte, keyLen)
	if len(newBlock) > 0 {
		if len(newBlock) < keyLen {
			return fmt.Errorf("new password block too short: got %d bytes, need %d", len(newBlock), keyLen)
		}
		copy(next, newBlock[:keyLen])
		flags |= 0x01
	}
	if flags&0x11 == 0x11 {
		flags &= 0xEE
	}

	cdb := []byte{0xC1, 0xE2, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, byte(8 + 2*keyLen), 0x00}
	payload := append(payloadHeader(flags, keyLen), old...)
	payload = append(payload, next...)
	log.Debug("change password", "cipher", st.Cipher, "flags", fmt.Sprintf("%#02x", flags))
	if err := d.t.Write(cdb, payload); err != nil {
		return fmt.Errorf("change password rejected (wrong password?): %w", err)
	}
	return nil
}

// SecureErase cycles the drive's internal encryption key, making all data
// and the partition table permanently unreadable. cipher selects the new
// cipher; zero keeps the drive's current one.
func (d *Drive) SecureErase(cipher CipherID) error {
	st, err := d.EncryptionStatus()
	if err != nil {
		return err
	}
	if cipher == 0 {
		cipher = st.Cipher
	}
	keyLen, err := cipher.KeyLength()
	if err != nil {
		return err
	}

	payload := []byte{0x45, 0x00, 0x00, 0x00, 0x30, 0x00, 0x00, 0x00}
	if cipher != CipherFDE {
		payload[3] = 0x01
	}
	random := make([]byte, keyLen)
	if _, err := rand.Read(random); err != nil {
		return fmt.Errorf("generate key material: %w", err)
	}
	payload = append(payload, random...)

	// The key reset enabler is only valid for the request that immediately
	// follows the status read, so fetch it fresh here.
	st, err = d.EncryptionStatus()
	if err != nil {
		return err
	}
	cdb := []byte{0xC1, 0xE3, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, byte(keyLen + 8), 0x00}
	copy(cdb[2:6], st.KeyResetEnabler[:])
	log.Debug("secure erase", "cipher", cipher, "keylen", keyLen)
	if err := d.t.Write(cdb, payload); err != nil {
		return fmt.Errorf("secure erase: %w", err)
	}
	return nil
}
