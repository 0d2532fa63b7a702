package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/device"
	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/utils"
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Re-scan the SCSI bus so an unlocked device can be mounted",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		info, dev, drive, err := openDrive()
		if err != nil {
			return err
		}

		st, err := drive.EncryptionStatus()
		if err != nil {
			_ = dev.Close()
			return err
		}
		if st.Security != passport.StatusNoLock && st.Security != passport.StatusUnlocked {
			_ = dev.Close()
			return fmt.Errorf("device needs to be unlocked in order to mount it (status: %s)", st.Security)
		}

		// Release our handle before asking the kernel to drop the target.
		_ = dev.Close()
		if err := device.Rescan(info); err != nil {
			return err
		}
		utils.Success("Now depending on your system you can mount your device or it will be automatically mounted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mountCmd)
}
