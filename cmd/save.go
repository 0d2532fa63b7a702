package cmd

import (
	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/store"
	"github.com/drei/wdpass/internal/utils"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the device password to the keyring",
	Long: `Derive the credential for the device from a prompted passphrase and
store it in the desktop keyring. Only the derived block is stored, never
the passphrase itself.`,
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

		passphrase, err := utils.ReadPassphrase("Insert the password to save")
		if err != nil {
			return err
		}
		h, err := drive.ReadHSB1()
		if err != nil {
			return err
		}
		block := passport.DerivePassword(passphrase, h.Iterations, h.Salt)

		if err := keyringStore().Save(info.Identity(), block); err != nil {
			return err
		}
		utils.Success("Password saved to the keyring for %q.", info.Identity())

		withRepository(func(r *store.Repository) error {
			_, err := r.RecordDevice(info.Identity(), info.Vendor, info.Model, info.Path)
			return err
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
