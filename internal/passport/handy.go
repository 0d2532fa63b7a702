package passport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
)

// blockSize is the Handy Store sector size.
const blockSize = 512

var (
	// ErrBadChecksum indicates a Handy Store block whose trailing checksum
	// byte does not match its contents.
	ErrBadChecksum = errors.New("wrong handy store checksum")

	hsb1Signature = []byte{0x00, 0x01, 0x44, 0x57}
)

// HSB1 is the first Handy Store block: the password-derivation parameters
// the drive expects, plus the user's optional hint.
type HSB1 struct {
	Iterations uint32
	// Salt holds raw UTF-16LE code units, terminated by a zero pair.
	Salt []byte
	// Hint holds raw UTF-16LE code units, terminated by a zero pair.
	Hint []byte
}

// HandyStoreBlock reads the given Handy Store sector.
func (d *Drive) HandyStoreBlock(block uint32) ([]byte, error) {
	cdb := []byte{0xD8, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x01, 0x00}
	binary.BigEndian.PutUint32(cdb[2:6], block)
	data, err := d.t.Read(cdb, blockSize)
	if err != nil {
		return nil, fmt.Errorf("read handy store block %d: %w", block, err)
	}
	return data, nil
}

// hsbChecksum computes the checksum over a Handy Store sector. Byte 0 is
// counted twice, matching what WD's own utilities write.
func hsbChecksum(data []byte) byte {
	c := 0
	for i := 0; i < 510; i++ {
		c += int(data[i])
	}
	c += int(data[0])
	return byte(-c & 0xFF)
}

// ReadHSB1 reads and validates the first Handy Store block.
func (d *Drive) ReadHSB1() (HSB1, error) {
	sector, err := d.HandyStoreBlock(1)
	if err != nil {
		return HSB1{}, err
	}
	if hsbChecksum(sector) != sector[511] {
		return HSB1{}, ErrBadChecksum
	}
	if !bytes.Equal(sector[:4], hsb1Signature) {
		return HSB1{}, fmt.Errorf("wrong HSB1 signature % x", sector[:4])
	}
	h := HSB1{
		Iterations: binary.LittleEndian.Uint32(sector[8:12]),
		Salt:       append(append([]byte{}, sector[12:20]...), 0x00, 0x00),
		Hint:       append(append([]byte{}, sector[24:226]...), 0x00, 0x00),
	}
	return h, nil
}

// HintString decodes the stored hint to a printable string, or "" when no
// hint is set.
func (h HSB1) HintString() string {
	return decodeUTF16Z(h.Hint)
}

// decodeUTF16Z decodes little-endian UTF-16 code units up to the first zero
// pair.
func decodeUTF16Z(b []byte) string {
	var units []uint16
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		return ""
	}
	return string(utf16.Decode(units))
}
