// Package config provides wdpass data paths and user settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings are the user-tunable options read from the config file.
type Settings struct {
	// Device forces a device path, like the --device flag.
	Device string
	// KeyringService overrides the Secret Service name for saved credentials.
	KeyringService string
	// Hooks are commands run after a successful unlock and bus rescan.
	Hooks []string
	// HookTimeout bounds each hook command.
	HookTimeout time.Duration
	// HookInteractive attaches a PTY to hooks when stdin is a terminal, for
	// hooks that prompt (polkit agents, sudo).
	HookInteractive bool
	// WatchSettle is how long the hotplug watcher waits after a device node
	// appears before probing it.
	WatchSettle time.Duration
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		KeyringService: "wdpass",
		HookTimeout:    30 * time.Second,
		WatchSettle:    2 * time.Second,
	}
}

// Load reads settings from the TOML config file in ConfigDir (or the
// explicit path when non-empty). A missing config file is not an error;
// defaults apply.
func Load(path string) (Settings, error) {
	defaults := Defaults()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetDefault("device", defaults.Device)
	v.SetDefault("keyring.service", defaults.KeyringService)
	v.SetDefault("hooks.commands", defaults.Hooks)
	v.SetDefault("hooks.timeout", defaults.HookTimeout)
	v.SetDefault("hooks.interactive", defaults.HookInteractive)
	v.SetDefault("watch.settle", defaults.WatchSettle)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return defaults, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return defaults, err
		}
		v.SetConfigName("config")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return defaults, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return Settings{
		Device:          v.GetString("device"),
		KeyringService:  v.GetString("keyring.service"),
		Hooks:           v.GetStringSlice("hooks.commands"),
		HookTimeout:     v.GetDuration("hooks.timeout"),
		HookInteractive: v.GetBool("hooks.interactive"),
		WatchSettle:     v.GetDuration("watch.settle"),
	}, nil
}
