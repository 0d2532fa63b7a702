package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/drei/wdpass/internal/config"
	"github.com/drei/wdpass/internal/utils"
	"github.com/drei/wdpass/internal/version"
)

var (
	deviceFlag string
	cfgFile    string
	verbose    bool

	// settings are loaded from the config file before any command runs.
	settings = config.Defaults()

	rootCmd = &cobra.Command{
		Use:   "wdpass",
		Short: "wdpass manages the hardware encryption of WD My Passport drives",
		Long: `wdpass talks to Western Digital My Passport drives over SCSI to show
their lock state, unlock them, change or remove the password, securely
erase them, and make the unlocked data partition visible to the kernel.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			utils.Title("wdpass " + version.Version + " - WD My Passport linux utility")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation reports the device state.
			return runStatus(false)
		},
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().StringVarP(&deviceFlag, "device", "d", "", "force device path (ex. /dev/sdb)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/wdpass/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// initRootConfig reads the config file and wires the log level.
func initRootConfig() {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	s, err := config.Load(cfgFile)
	if err != nil {
		log.Warn("config not loaded", "err", err)
		return
	}
	settings = s
}

// Execute executes the root command.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
