package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/device"
	"github.com/drei/wdpass/internal/hooks"
	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/store"
	"github.com/drei/wdpass/internal/utils"
)

var (
	unlockSaved   bool
	unlockSave    bool
	unlockNoHooks bool
	unlockForce   bool
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		info, dev, drive, err := openDrive()
		if err != nil {
			return err
		}
		closed := false
		defer func() {
			if !closed {
				_ = dev.Close()
			}
		}()

		var block []byte
		method := store.MethodPassphrase
		if unlockSaved {
			utils.Success("Unlock using saved password")
			block, err = keyringStore().Load(info.Identity())
			if err != nil {
				return err
			}
			method = store.MethodKeyring
		} else {
			passphrase, err := utils.ReadPassphrase("Insert password to unlock the device")
			if err != nil {
				return err
			}
			h, err := drive.ReadHSB1()
			if err != nil {
				return err
			}
			block = passport.DerivePassword(passphrase, h.Iterations, h.Salt)
		}

		err = drive.Unlock(block)
		recordUnlockOutcome(info, method, err)
		if err != nil {
			if errors.Is(err, passport.ErrAlreadyUnlocked) {
				utils.Fail("Your device is already unlocked!")
				return nil
			}
			return err
		}
		utils.Success("Device unlocked.")

		if unlockSave {
			if err := keyringStore().Save(info.Identity(), block); err != nil {
				utils.Fail("Can't save password to the keyring: %v", err)
			} else {
				utils.Success("Password saved to the keyring.")
			}
		}

		if len(settings.Hooks) > 0 && !unlockNoHooks {
			// The data partition has to be visible before mount hooks run.
			_ = dev.Close()
			closed = true
			if err := device.Rescan(info); err != nil {
				return err
			}
			runner := hooks.New(settings.HookTimeout)
			runner.Force = unlockForce
			runner.Interactive = settings.HookInteractive
			runner.Env = []string{"WDPASS_DEVICE=" + info.Path}
			if err := runner.RunAll(cmd.Context(), settings.Hooks); err != nil {
				return err
			}
			utils.Success("Unlock hooks completed.")
		}
		return nil
	},
}

func init() {
	unlockCmd.Flags().BoolVar(&unlockSaved, "saved", false, "unlock with the password saved in the keyring")
	unlockCmd.Flags().BoolVar(&unlockSave, "save", false, "save the password to the keyring after a successful unlock")
	unlockCmd.Flags().BoolVar(&unlockNoHooks, "no-hooks", false, "skip configured post-unlock hooks")
	unlockCmd.Flags().BoolVar(&unlockForce, "force", false, "run hooks even if they look destructive")
	rootCmd.AddCommand(unlockCmd)
}
