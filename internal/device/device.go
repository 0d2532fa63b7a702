// Package device discovers WD My Passport drives through sysfs and handles
// the SCSI bus rescan that exposes an unlocked drive's data partition.
package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// Sysfs and devtmpfs roots. Package-level so tests can point them at a
// fixture tree.
var (
	sysBlock    = "/sys/block"
	sysScsiHost = "/sys/class/scsi_host"
	devRoot     = "/dev"
)

// ErrNoDevice is returned when no My Passport drive is present.
var ErrNoDevice = errors.New("no WD My Passport device found")

// ErrMultipleDevices is returned when more than one candidate is present
// and the caller did not single one out.
var ErrMultipleDevices = errors.New("multiple My Passport devices detected, specify one with --device")

var hostRe = regexp.MustCompile(`host(\d+)`)

// Info describes a discovered drive.
type Info struct {
	// Path is the device node, e.g. /dev/sdb.
	Path string
	// Name is the kernel block name, e.g. sdb.
	Name string
	// Host is the SCSI host number the drive hangs off.
	Host   string
	Vendor string
	Model  string
}

// Identity is a stable key for the drive, used for keyring accounts and the
// device registry.
func (i Info) Identity() string {
	return strings.TrimSpace(i.Vendor + " " + i.Model)
}

func readSysString(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

// hostNumber extracts the SCSI host number from the block device's sysfs
// device link.
func hostNumber(blockName string) string {
	link, err := os.Readlink(filepath.Join(sysBlock, blockName, "device"))
	if err != nil {
		// Fall back to resolving the whole path.
		resolved, rerr := filepath.EvalSymlinks(filepath.Join(sysBlock, blockName, "device"))
		if rerr != nil {
			return ""
		}
		link = resolved
	}
	if m := hostRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

// Discover scans sysfs for sd* disks that identify as My Passport drives.
func Discover() ([]Info, error) {
	entries, err := os.ReadDir(sysBlock)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", sysBlock, err)
	}
	var found []Info
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "sd") {
			continue
		}
		model := readSysString(filepath.Join(sysBlock, name, "device", "model"))
		if !strings.Contains(model, "Passport") {
			continue
		}
		info := Info{
			Path:   filepath.Join(devRoot, name),
			Name:   name,
			Host:   hostNumber(name),
			Vendor: readSysString(filepath.Join(sysBlock, name, "device", "vendor")),
			Model:  model,
		}
		log.Debug("discovered device", "path", info.Path, "model", info.Model, "host", info.Host)
		found = append(found, info)
	}
	return found, nil
}

// Pick resolves the drive to operate on. An explicit device path wins;
// otherwise exactly one discovered drive is required.
func Pick(explicit string) (Info, error) {
	if explicit != "" {
		name := filepath.Base(explicit)
		return Info{
			Path:   explicit,
			Name:   name,
			Host:   hostNumber(name),
			Vendor: readSysString(filepath.Join(sysBlock, name, "device", "vendor")),
			Model:  readSysString(filepath.Join(sysBlock, name, "device", "model")),
		}, nil
	}
	found, err := Discover()
	if err != nil {
		return Info{}, err
	}
	switch len(found) {
	case 0:
		return Info{}, ErrNoDevice
	case 1:
		return found[0], nil
	}
	return Info{}, ErrMultipleDevices
}

// Rescan removes the stale SCSI target and triggers a host scan so the
// kernel rereads the (now readable) partition table. The host number is
// captured from the Info before the delete, since the sysfs entry vanishes
// with it.
func Rescan(info Info) error {
	if info.Host == "" {
		return fmt.Errorf("unknown SCSI host for %s", info.Path)
	}
	deletePath := filepath.Join(sysBlock, info.Name, "device", "delete")
	if err := os.WriteFile(deletePath, []byte("1\n"), 0o200); err != nil {
		return fmt.Errorf("remove stale device %s: %w", info.Name, err)
	}
	scanPath := filepath.Join(sysScsiHost, "host"+info.Host, "scan")
	if err := os.WriteFile(scanPath, []byte("- - -\n"), 0o200); err != nil {
		return fmt.Errorf("rescan host%s: %w", info.Host, err)
	}
	log.Debug("bus rescan issued", "device", info.Name, "host", info.Host)
	return nil
}
