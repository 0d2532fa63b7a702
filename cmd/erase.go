package cmd

import (
	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/utils"
)

var eraseCipher uint8

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Secure erase the device",
	Long: `Cycle the device's internal encryption key. All data, including the
partition table, becomes permanently unreadable. A new partition table
has to be created afterwards (hint: fdisk and mkfs).`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		info, dev, drive, err := openDrive()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Close() }()

		utils.Question("Any data on %s will be lost. Are you sure you want to continue?", info.Path)
		if !utils.Confirm("Erase device") {
			utils.Success("Ok. Bye.")
			return nil
		}

		if err := drive.SecureErase(passport.CipherID(eraseCipher)); err != nil {
			return err
		}
		utils.Success("Device erased. You need to create a new partition on the device (Hint: fdisk and mkfs)")
		return nil
	},
}

func init() {
	eraseCmd.Flags().Uint8Var(&eraseCipher, "cipher", 0, "cipher ID for the new key (0 keeps the current cipher)")
	rootCmd.AddCommand(eraseCmd)
}
