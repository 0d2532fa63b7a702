package cmd

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/device"
	"github.com/drei/wdpass/internal/hooks"
	"github.com/drei/wdpass/internal/keyring"
	"github.com/drei/wdpass/internal/passport"
	"github.com/drei/wdpass/internal/scsi"
	"github.com/drei/wdpass/internal/store"
	"github.com/drei/wdpass/internal/utils"
	"github.com/drei/wdpass/internal/watcher"
)

var watchNoHooks bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-unlock known devices when they are plugged in",
	Long: `Watch for My Passport drives being plugged in and unlock them with the
credential saved in the keyring. Drives without a saved credential are
reported and left locked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		w := &watcher.Watcher{
			Settle:   settings.WatchSettle,
			OnDevice: autoUnlock,
		}
		err := w.Run(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// autoUnlock unlocks a freshly plugged drive when a saved credential exists.
func autoUnlock(ctx context.Context, info device.Info) error {
	dev, err := scsi.Open(info.Path)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = dev.Close()
		}
	}()
	drive := passport.NewDrive(dev)

	st, err := drive.EncryptionStatus()
	if err != nil {
		return err
	}
	if st.Security != passport.StatusLocked {
		log.Info("device does not need unlocking", "device", info.Path, "status", st.Security.String())
		return nil
	}

	block, err := keyringStore().Load(info.Identity())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			utils.Question("%s is locked and has no saved credential; run 'wdpass save'", info.Path)
			return nil
		}
		return err
	}

	err = drive.Unlock(block)
	recordUnlockOutcome(info, store.MethodKeyring, err)
	if err != nil {
		return err
	}
	utils.Success("Unlocked %s.", info.Path)

	// The data partition has to be visible before mount hooks run.
	_ = dev.Close()
	closed = true
	if err := device.Rescan(info); err != nil {
		return err
	}
	if len(settings.Hooks) > 0 && !watchNoHooks {
		runner := hooks.New(settings.HookTimeout)
		runner.Interactive = settings.HookInteractive
		runner.Env = []string{"WDPASS_DEVICE=" + info.Path}
		if err := runner.RunAll(ctx, settings.Hooks); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoHooks, "no-hooks", false, "skip configured post-unlock hooks")
	rootCmd.AddCommand(watchCmd)
}
