package passport

import (
	"crypto/sha256"
	"encoding/binary"
	"unicode/utf16"
)

// DerivePassword turns a passphrase into the password block the drive
// expects: the decoded salt is prefixed to the passphrase, the result is
// encoded as UTF-16LE without a BOM, and SHA-256 is applied `iterations`
// times.
func DerivePassword(passphrase string, iterations uint32, salt []byte) []byte {
	// The salt is stored as UTF-16LE pairs; decoding stops at the first zero
	// pair and, as in WD's own tools, only the low byte of each pair
	// contributes a character.
	var prefix []rune
	for i := 0; i+1 < len(salt); i += 2 {
		if salt[i] == 0x00 && salt[i+1] == 0x00 {
			break
		}
		prefix = append(prefix, rune(salt[i]))
	}

	units := utf16.Encode([]rune(string(prefix) + passphrase))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}

	block := buf
	for i := uint32(0); i < iterations; i++ {
		sum := sha256.Sum256(block)
		block = sum[:]
	}
	return block
}
