package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battnotify/pkg/daemon"
	"github.com/charlie0129/battnotify/pkg/version"
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	opts := daemon.Options{}

	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run battnotify daemon in the foreground",
		GroupID: gAdvanced,
		Long: `Run battnotify daemon in the foreground.

The daemon polls the battery, sends notifications, and serves status on a
unix socket. Send SIGHUP to reload the config file.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("battnotify daemon starting")

			opts.ConfigPath = configPath
			opts.UnixSocketPath = unixSocketPath
			return daemon.Run(opts)
		},
	}

	f := cmd.Flags()

	f.BoolVar(&opts.DefaultConfig, "default-config", false,
		"Use the built-in default config instead of reading the config file.")
	f.IntVar(&opts.BatteryIndex, "battery-index", 0,
		"Index of the battery to watch, for machines with more than one.")
	f.BoolVar(&opts.NoSound, "no-sound", false,
		"Never play notification sounds.")

	return cmd
}
