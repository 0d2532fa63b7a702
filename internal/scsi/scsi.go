// Package scsi provides raw SCSI command pass-through to block devices.
// On Linux it uses the SG_IO ioctl; other platforms return ErrUnsupported.
package scsi

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupported is returned on platforms without SCSI pass-through support.
var ErrUnsupported = errors.New("scsi pass-through is not supported on this platform")

// Device is an open block device accepting SCSI commands.
type Device struct {
	f *os.File
}

// Open opens the block device at path for command pass-through.
// The caller needs read-write access to the device node (usually root).
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}
	return &Device{f: f}, nil
}

// Path returns the device node path the Device was opened with.
func (d *Device) Path() string { return d.f.Name() }

// Close closes the underlying device node.
func (d *Device) Close() error {
	if d.f == nil {
		return nil
	}
	return d.f.Close()
}

// Read issues the CDB and transfers n bytes from the device.
func (d *Device) Read(cdb []byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := d.ioctl(cdb, buf, fromDevice); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write issues the CDB and transfers data to the device.
func (d *Device) Write(cdb []byte, data []byte) error {
	return d.ioctl(cdb, data, toDevice)
}

// InquiryData is the identity reported by a standard INQUIRY command.
type InquiryData struct {
	Vendor   string
	Product  string
	Revision string
}

// Inquiry issues a standard INQUIRY (opcode 0x12) and returns the
// space-trimmed vendor, product and revision strings.
func (d *Device) Inquiry() (InquiryData, error) {
	const allocLen = 96
	cdb := []byte{0x12, 0x00, 0x00, 0x00, allocLen, 0x00}
	data, err := d.Read(cdb, allocLen)
	if err != nil {
		return InquiryData{}, fmt.Errorf("inquiry: %w", err)
	}
	if len(data) < 36 {
		return InquiryData{}, fmt.Errorf("inquiry: short response (%d bytes)", len(data))
	}
	return InquiryData{
		Vendor:   strings.TrimSpace(string(data[8:16])),
		Product:  strings.TrimSpace(string(data[16:32])),
		Revision: strings.TrimSpace(string(data[32:36])),
	}, nil
}

// CommandError reports a command the device or the host rejected.
type CommandError struct {
	Op           string
	Status       uint8
	HostStatus   uint16
	DriverStatus uint16
	SenseKey     byte
}

func (e *CommandError) Error() string {
	if e.SenseKey != 0 {
		return fmt.Sprintf("scsi %s: check condition (sense key %#x)", e.Op, e.SenseKey)
	}
	return fmt.Sprintf("scsi %s: status=%#x host=%#x driver=%#x", e.Op, e.Status, e.HostStatus, e.DriverStatus)
}
