package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battnotify/pkg/daemon"
)

func NewNotifyTestCommand() *cobra.Command {
	n := daemon.TestNotification{}

	cmd := &cobra.Command{
		Use:     "notify-test",
		Short:   "Ask the daemon to send a test notification",
		GroupID: gBasic,
		Long: `Ask the daemon to send a test notification.

The notification goes through the same notification server and sound player
the daemon uses for battery notifications.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := newClient().NotifyTest(n)
			if err != nil {
				return err
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&n.Summary, "summary", "", "Notification summary")
	f.StringVar(&n.Body, "body", "", "Notification body, defaults to the current charge")
	f.StringVar(&n.Icon, "icon", "", "Notification icon name or path")
	f.StringVar(&n.Urgency, "urgency", "", "Urgency (Low, Normal, Critical)")
	f.StringVar(&n.Sound, "sound", "", "Sound file to play")

	return cmd
}
