package main

import (
	"encoding/json"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battnotify/pkg/config"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage the config file",
		GroupID: gBasic,
	}

	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigCheckCommand(),
		newConfigShowCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	force := false

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config to the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return pkgerrors.Errorf("%s already exists, use --force to overwrite it", configPath)
			}

			if err := config.NewDefault(configPath).Save(); err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			cmd.Printf("default config written to %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file.")

	return cmd
}

func newConfigCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			logrus.WithFields(conf.LogrusFields()).Debug("config parsed")
			cmd.Printf("%s is valid\n", configPath)
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	fromDaemon := false

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Long: `Print the effective config as JSON.

By default the config file is read. With --daemon, the config the running
daemon uses is printed instead, which differs from the file until the daemon
is reloaded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var raw *config.RawFileConfig
			if fromDaemon {
				var err error
				raw, err = newClient().GetConfig()
				if err != nil {
					return err
				}
			} else {
				conf, err := config.NewFile(configPath)
				if err != nil {
					return err
				}
				raw = conf.Raw()
			}

			b, err := json.MarshalIndent(raw, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(b))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromDaemon, "daemon", false, "Ask the running daemon instead of reading the file.")

	return cmd
}
