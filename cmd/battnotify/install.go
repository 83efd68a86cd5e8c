package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battnotify/pkg/config"
	daemonutils "github.com/charlie0129/battnotify/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install battnotify as a systemd user service",
		GroupID: gInstallation,
		Long: `Install battnotify daemon as a systemd user service.

This makes battnotify run in the background whenever you log in to a graphical
session. A default config file is written if none exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				logrus.Infof("writing default config to %s", configPath)
				if err := config.NewDefault(configPath).Save(); err != nil {
					return fmt.Errorf("failed to save config: %v", err)
				}
			} else if _, err := config.NewFile(configPath); err != nil {
				return err
			}

			err := daemonutils.Install("--config", configPath, "--daemon-socket", unixSocketPath)
			if err != nil {
				return fmt.Errorf("failed to install daemon: %v", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("systemd will use current binary (%s) at login so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``battnotify install'' again.\n", exePath)

			return nil
		},
	}

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall battnotify systemd user service",
		GroupID: gInstallation,
		Long: `Uninstall battnotify daemon from systemd.

This stops battnotify and removes its user unit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			fmt.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `battnotify' again. If you want a complete uninstall, you can remove both config file and battnotify itself manually.\n", configPath)

			return nil
		},
	}

	return cmd
}
