package cmd

import (
	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/device"
	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/scsi"
	"github.com/drei/wdpass/internal/store"
	"github.com/drei/wdpass/internal/tui"
)

// driveBackend is the tui.Backend backed by real SCSI devices. Every
// operation opens the device fresh so the browser never holds a drive open
// across user think time.
type driveBackend struct{}

func (driveBackend) Devices() ([]tui.DeviceEntry, error) {
	infos, err := device.Discover()
	if err != nil {
		return nil, err
	}
	entries := make([]tui.DeviceEntry, 0, len(infos))
	for _, info := range infos {
		entry := tui.DeviceEntry{Info: info, Security: "unknown", Cipher: "unknown"}
		if dev, err := scsi.Open(info.Path); err == nil {
			if st, err := passport.NewDrive(dev).EncryptionStatus(); err == nil {
				entry.Security = st.Security.String()
				entry.Cipher = st.Cipher.String()
				entry.Locked = st.Security == passport.StatusLocked
			}
			_ = dev.Close()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (driveBackend) Unlock(info device.Info, passphrase string) error {
	dev, err := scsi.Open(info.Path)
	if err != nil {
		return err
	}
	defer func() { _ = dev.Close() }()
	drive := passport.NewDrive(dev)
	h, err := drive.ReadHSB1()
	if err != nil {
		return err
	}
	err = drive.Unlock(passport.DerivePassword(passphrase, h.Iterations, h.Salt))
	recordUnlockOutcome(info, store.MethodPassphrase, err)
	return err
}

func (driveBackend) Mount(info device.Info) error {
	dev, err := scsi.Open(info.Path)
	if err != nil {
		return err
	}
	st, err := passport.NewDrive(dev).EncryptionStatus()
	_ = dev.Close()
	if err != nil {
		return err
	}
	if st.Security != passport.StatusUnlocked && st.Security != passport.StatusNoLock {
		return passport.ErrNotUnlocked
	}
	return device.Rescan(info)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and unlock devices interactively",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		_, err := tui.NewProgram(driveBackend{}).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
