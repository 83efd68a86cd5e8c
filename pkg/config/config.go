package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Config interface {
	// NotificationTime is how long a notification stays on screen, in ms.
	NotificationTime() int
	// PollInterval is the fixed cadence of the monitor loop.
	PollInterval() time.Duration
	// SoundCommand overrides the player used for notification sounds.
	SoundCommand() string

	// LowBatteryLevels is consulted while discharging. Nil disables it.
	LowBatteryLevels() ThresholdTable
	// HighBatteryLevels is consulted while charging. Nil disables it.
	HighBatteryLevels() ThresholdTable
	// ChargerNotifications is nil when charger notifications are disabled.
	ChargerNotifications() *ChargerNotification

	// Raw returns a copy of the underlying file configuration.
	Raw() *RawFileConfig
	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
