package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/daemon"
	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

type statusData struct {
	status *daemon.Status
	config *config.RawFileConfig
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	c := newClient()

	status, err := c.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	conf, err := c.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		status: status,
		config: conf,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of battnotify",
		Long:    `Get battery state, armed levels, and configuration from the daemon.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			conf := config.NewFileFromConfig(data.config, "")
			stats := data.status.Stats

			cmd.Println(bold("Battery status:"))
			cmd.Printf("  Current charge: %s\n", bold("%d%%", stats.Percentage))
			cmd.Printf("  State: %s\n", stateText(stats.CurrentState))
			if stats.CurrentState == powerinfo.Unknown {
				cmd.Printf("    Treated as %s until the battery reports again.\n", stateText(data.status.InferredState))
			}
			cmd.Printf("  Last notified state: %s\n", stateText(stats.LastNotifiedState))

			cmd.Println()

			cmd.Println(bold("Thresholds:"))
			fired := map[uint8]bool{}
			for _, l := range data.status.FiredLevels {
				fired[uint8(l)] = true
			}
			for _, l := range conf.LowBatteryLevels().Descending() {
				cmd.Printf("  Low %3d%%: %s %s\n", l, armedText(fired[l]), conf.LowBatteryLevels()[l].Message)
			}
			for _, l := range conf.HighBatteryLevels().Ascending() {
				cmd.Printf("  High %3d%%: %s %s\n", l, armedText(fired[l]), conf.HighBatteryLevels()[l].Message)
			}

			cmd.Println()

			cmd.Println(bold("Configuration:"))
			charger := conf.ChargerNotifications()
			cmd.Printf("  Notify when plugged in: %s\n", bool2Text(charger != nil && charger.ShouldNotifyForState(powerinfo.Charging)))
			cmd.Printf("  Notify when unplugged: %s\n", bool2Text(charger != nil && charger.ShouldNotifyForState(powerinfo.Discharging)))
			cmd.Printf("  Poll interval: %s\n", bold("%s", conf.PollInterval()))
			cmd.Printf("  Notification time: %s\n", bold("%d ms", conf.NotificationTime()))

			cmd.Println()
			cmd.Printf("Daemon %s, up %s\n", data.status.Version, data.status.Uptime)
			return nil
		},
	}
}

func stateText(s powerinfo.PowerState) string {
	switch s {
	case powerinfo.Charging:
		return color.New(color.Bold, color.FgGreen).Sprint("charging")
	case powerinfo.Discharging:
		return color.New(color.Bold, color.FgRed).Sprint("discharging")
	default:
		return bold("unknown")
	}
}

// armedText shows a level that already fired as spent.
func armedText(fired bool) string {
	if fired {
		return color.New(color.Faint).Sprint("[sent] ")
	}
	return color.New(color.Bold, color.FgGreen).Sprint("[armed]")
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
