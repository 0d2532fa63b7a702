//go:build linux

package scsi

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Direction constants and ioctl number from <scsi/sg.h>.
const (
	sgIO = 0x2285

	fromDevice = -3 // SG_DXFER_FROM_DEV
	toDevice   = -2 // SG_DXFER_TO_DEV

	senseLen  = 32
	timeoutMs = 20000
)

// sgIoHdr mirrors struct sg_io_hdr from <scsi/sg.h>. Field order and
// alignment must match the kernel ABI exactly.
type sgIoHdr struct {
	interfaceID    int32
	dxferDirection int32
	cmdLen         uint8
	mxSbLen        uint8
	iovecCount     uint16
	dxferLen       uint32
	dxferp         unsafe.Pointer
	cmdp           unsafe.Pointer
	sbp            unsafe.Pointer
	timeout        uint32
	flags          uint32
	packID         int32
	usrPtr         unsafe.Pointer
	status         uint8
	maskedStatus   uint8
	msgStatus      uint8
	sbLenWr        uint8
	hostStatus     uint16
	driverStatus   uint16
	resid          int32
	duration       uint32
	info           uint32
}

func (d *Device) ioctl(cdb []byte, data []byte, direction int32) error {
	if len(cdb) == 0 {
		return fmt.Errorf("empty CDB")
	}
	sense := make([]byte, senseLen)
	hdr := sgIoHdr{
		interfaceID:    'S',
		dxferDirection: direction,
		cmdLen:         uint8(len(cdb)),
		mxSbLen:        senseLen,
		timeout:        timeoutMs,
		cmdp:           unsafe.Pointer(&cdb[0]),
		sbp:            unsafe.Pointer(&sense[0]),
	}
	if len(data) > 0 {
		hdr.dxferLen = uint32(len(data))
		hdr.dxferp = unsafe.Pointer(&data[0])
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), sgIO, uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return fmt.Errorf("SG_IO ioctl on %s: %w", d.f.Name(), errno)
	}

	if hdr.status != 0 || hdr.hostStatus != 0 || hdr.driverStatus != 0 {
		ce := &CommandError{
			Op:           fmt.Sprintf("cdb %#02x", cdb[0]),
			Status:       hdr.status,
			HostStatus:   hdr.hostStatus,
			DriverStatus: hdr.driverStatus,
		}
		// Sense key lives in the low nibble of byte 2 (fixed format).
		if hdr.sbLenWr > 2 {
			ce.SenseKey = sense[2] & 0x0F
		}
		return ce
	}
	return nil
}
