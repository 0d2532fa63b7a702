package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/device"
	"github.com/drei/wdpass/internal/keyring"
	"github.com/drei/wdpass/internal/store"
	"github.com/drei/wdpass/internal/utils"
)

var devicesForget string

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List detected and previously seen My Passport devices",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if devicesForget != "" {
			return forgetDevice(devicesForget)
		}

		found, err := device.Discover()
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Println("No My Passport devices connected.")
		} else {
			utils.Success("Connected devices")
			for _, d := range found {
				fmt.Printf("\t%s  %s\n", d.Path, d.Identity())
			}
		}

		db, err := store.InitDB()
		if err != nil {
			return err
		}
		r := store.NewRepository(db)
		defer func() { _ = r.Close() }()

		known, err := r.ListDevices()
		if err != nil {
			return err
		}
		if len(known) > 0 {
			utils.Success("Known devices")
			for _, d := range known {
				line := fmt.Sprintf("\t%s  last seen %s at %s", d.Identity, d.LastPath, d.LastSeen.Format("2006-01-02 15:04"))
				if d.Hint.Valid && d.Hint.String != "" {
					line += fmt.Sprintf("  (hint: %s)", d.Hint.String)
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

// forgetDevice removes a device from the registry and drops its saved
// credential.
func forgetDevice(identity string) error {
	db, err := store.InitDB()
	if err != nil {
		return err
	}
	r := store.NewRepository(db)
	defer func() { _ = r.Close() }()

	if err := r.ForgetDevice(identity); err != nil {
		return err
	}
	if err := keyringStore().Delete(identity); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	utils.Success("Forgot device %q.", identity)
	return nil
}

func init() {
	devicesCmd.Flags().StringVar(&devicesForget, "forget", "", "forget a known device and drop its saved credential")
	rootCmd.AddCommand(devicesCmd)
}
