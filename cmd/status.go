package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/store"
	"github.com/drei/wdpass/internal/utils"
)

var statusHint bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show device security status and encryption type",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runStatus(statusHint)
	},
}

func runStatus(showHint bool) error {
	if err := requireRoot(); err != nil {
		return err
	}
	info, dev, drive, err := openDrive()
	if err != nil {
		return err
	}
	defer func() { _ = dev.Close() }()

	st, err := drive.EncryptionStatus()
	if err != nil {
		return err
	}
	utils.Success("Device state")
	fmt.Printf("\tDevice: %s (%s)\n", info.Path, info.Identity())
	fmt.Printf("\tSecurity status: %s\n", st.Security)
	fmt.Printf("\tEncryption type: %s\n", st.Cipher)

	var hint string
	if showHint {
		h, err := drive.ReadHSB1()
		if err != nil {
			return err
		}
		hint = h.HintString()
		if hint == "" {
			fmt.Printf("\tPassword hint: (none)\n")
		} else {
			fmt.Printf("\tPassword hint: %s\n", hint)
		}
	}

	withRepository(func(r *store.Repository) error {
		if _, err := r.RecordDevice(info.Identity(), info.Vendor, info.Model, info.Path); err != nil {
			return err
		}
		if hint != "" {
			return r.SetHint(info.Identity(), hint)
		}
		return nil
	})
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusHint, "hint", false, "also show the password hint stored on the drive")
	rootCmd.AddCommand(statusCmd)
}
