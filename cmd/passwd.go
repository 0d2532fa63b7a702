package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/utils"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change (or disable) the device password",
	Long: `Change the device password. Leaving the new password empty removes the
lock entirely; setting a password on an unencrypted device enables it.
The device has to be unlocked first.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		_, dev, drive, err := openDrive()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Close() }()

		oldPass, err := utils.ReadPassphrase("Insert the OLD password")
		if err != nil {
			return err
		}
		newPass, err := utils.ReadPassphrase("Insert the NEW password")
		if err != nil {
			return err
		}
		confirm, err := utils.ReadPassphrase("Confirm the NEW password")
		if err != nil {
			return err
		}
		if newPass != confirm {
			return errors.New("password confirmation doesn't match the given password")
		}
		if oldPass == "" && newPass == "" {
			return errors.New("both passwords shouldn't be empty")
		}

		h, err := drive.ReadHSB1()
		if err != nil {
			return err
		}
		var oldBlock, newBlock []byte
		if oldPass != "" {
			oldBlock = passport.DerivePassword(oldPass, h.Iterations, h.Salt)
		}
		if newPass != "" {
			newBlock = passport.DerivePassword(newPass, h.Iterations, h.Salt)
		}

		if err := drive.ChangePassword(oldBlock, newBlock); err != nil {
			return err
		}
		utils.Success("Password changed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)
}
