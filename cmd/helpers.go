package cmd

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/drei/wdpass/internal/device"
	"github.com/drei/wdpass/internal/keyring"
	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/scsi"
	"github.com/drei/wdpass/internal/store"
)

// requireRoot fails fast when the process lacks the privileges the SCSI
// pass-through and sysfs writes need.
func requireRoot() error {
	if os.Geteuid() != 0 {
		return errors.New("you need root privileges to run this command")
	}
	return nil
}

// pickDevice resolves the target drive from the --device flag, the config
// file, or discovery.
func pickDevice() (device.Info, error) {
	explicit := deviceFlag
	if explicit == "" {
		explicit = settings.Device
	}
	return device.Pick(explicit)
}

// openDrive opens the resolved drive for vendor commands. When sysfs could
// not identify the device (explicit --device path), INQUIRY fills in the
// vendor and model. The caller closes the returned scsi.Device.
func openDrive() (device.Info, *scsi.Device, *passport.Drive, error) {
	info, err := pickDevice()
	if err != nil {
		return device.Info{}, nil, nil, err
	}
	dev, err := scsi.Open(info.Path)
	if err != nil {
		return device.Info{}, nil, nil, err
	}
	if info.Model == "" {
		if id, err := dev.Inquiry(); err == nil {
			info.Vendor = id.Vendor
			info.Model = id.Product
		}
	}
	return info, dev, passport.NewDrive(dev), nil
}

// keyringStore returns the credential store honoring the configured
// service name.
func keyringStore() keyring.Store {
	return &keyring.SystemStore{Service: settings.KeyringService}
}

// recordUnlockOutcome updates the registry after an unlock attempt. A drive
// that was already unlocked is a no-op, not an attempt; it refreshes the
// device row but leaves no audit event.
func recordUnlockOutcome(info device.Info, method string, unlockErr error) {
	withRepository(func(r *store.Repository) error {
		if _, err := r.RecordDevice(info.Identity(), info.Vendor, info.Model, info.Path); err != nil {
			return err
		}
		if errors.Is(unlockErr, passport.ErrAlreadyUnlocked) {
			return nil
		}
		return r.RecordUnlock(info.Identity(), method, unlockErr == nil)
	})
}

// withRepository runs fn against the device registry. Registry failures are
// logged, not fatal: bookkeeping must never block a device operation.
func withRepository(fn func(r *store.Repository) error) {
	db, err := store.InitDB()
	if err != nil {
		log.Warn("device registry unavailable", "err", err)
		return
	}
	r := store.NewRepository(db)
	defer func() { _ = r.Close() }()
	if err := fn(r); err != nil {
		log.Warn("device registry update failed", "err", err)
	}
}
