//go:build !linux

package scsi

const (
	fromDevice = -3
	toDevice   = -2
)

func (d *Device) ioctl(cdb []byte, data []byte, direction int32) error {
	return ErrUnsupported
}
