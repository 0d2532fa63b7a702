package passport

import "fmt"

// SecurityStatus is the lock state reported by the encryption status command.
type SecurityStatus byte

const (
	StatusNoLock        SecurityStatus = 0x00
	StatusLocked        SecurityStatus = 0x01
	StatusUnlocked      SecurityStatus = 0x02
	StatusUnlockBlocked SecurityStatus = 0x06
	StatusNoKeys        SecurityStatus = 0x07
)

// String returns the human-readable security status.
func (s SecurityStatus) String() string {
	switch s {
	case StatusNoLock:
		return "No lock"
	case StatusLocked:
		return "Locked"
	case StatusUnlocked:
		return "Unlocked"
	case StatusUnlockBlocked:
		return "Locked, unlock blocked"
	case StatusNoKeys:
		return "No keys"
	}
	return fmt.Sprintf("unknown (%#02x)", byte(s))
}

// CipherID identifies the encryption algorithm the drive uses.
type CipherID byte

const (
	CipherAES128ECB CipherID = 0x10
	CipherAES128CBC CipherID = 0x12
	CipherAES128XTS CipherID = 0x18
	CipherAES256ECB CipherID = 0x20
	CipherAES256CBC CipherID = 0x22
	CipherAES256XTS CipherID = 0x28
	CipherFDE       CipherID = 0x30
)

// String returns the human-readable cipher name.
func (c CipherID) String() string {
	switch c {
	case CipherAES128ECB:
		return "AES_128_ECB"
	case CipherAES128CBC:
		return "AES_128_CBC"
	case CipherAES128XTS:
		return "AES_128_XTS"
	case CipherAES256ECB:
		return "AES_256_ECB"
	case CipherAES256CBC:
		return "AES_256_CBC"
	case CipherAES256XTS:
		return "AES_256_XTS"
	case CipherFDE:
		return "Full Disk Encryption"
	}
	return fmt.Sprintf("unknown (%#02x)", byte(c))
}

// KeyLength returns the password block length in bytes for the cipher.
func (c CipherID) KeyLength() (int, error) {
	switch c {
	case CipherAES128ECB, CipherAES128CBC, CipherAES128XTS:
		return 16, nil
	case CipherAES256ECB, CipherAES256CBC, CipherAES256XTS, CipherFDE:
		return 32, nil
	}
	return 0, fmt.Errorf("%w: %#02x", ErrUnsupportedCipher, byte(c))
}
