package config

import (
	"sort"
	"strings"

	"github.com/charlie0129/battnotify/pkg/powerinfo"
	"github.com/charlie0129/battnotify/pkg/utils/ptr"
)

const defaultUrgentLevel = "Normal"

// ThresholdTable maps a battery level (0-100) to the notification sent when
// the level is crossed.
type ThresholdTable map[uint8]BatteryNotification

// Ascending returns the configured levels from lowest to highest.
func (t ThresholdTable) Ascending() []uint8 {
	levels := make([]uint8, 0, len(t))
	for l := range t {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// Descending returns the configured levels from highest to lowest.
func (t ThresholdTable) Descending() []uint8 {
	levels := t.Ascending()
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
	return levels
}

// BatteryNotification describes the notification for a single level.
type BatteryNotification struct {
	Message           string  `json:"message" yaml:"message" toml:"message"`
	NotificationIcon  *string `json:"notification_icon,omitempty" yaml:"notification_icon,omitempty" toml:"notification_icon,omitempty"`
	NotificationSound *string `json:"notification_sound,omitempty" yaml:"notification_sound,omitempty" toml:"notification_sound,omitempty"`
	UrgentLevel       *string `json:"urgent_level,omitempty" yaml:"urgent_level,omitempty" toml:"urgent_level,omitempty"`
}

func (n BatteryNotification) Icon() string {
	return ptr.Deref(n.NotificationIcon, "")
}

func (n BatteryNotification) Sound() string {
	return ptr.Deref(n.NotificationSound, "")
}

// Urgency returns the configured urgency string, "Normal" if unset.
func (n BatteryNotification) Urgency() string {
	return urgentLevel(n.UrgentLevel)
}

// ChargerNotification configures notifications sent when the power state
// changes between charging and discharging.
type ChargerNotification struct {
	Charging        *bool   `json:"charging,omitempty" yaml:"charging,omitempty" toml:"charging,omitempty"`
	ChargingIcon    *string `json:"charging_icon,omitempty" yaml:"charging_icon,omitempty" toml:"charging_icon,omitempty"`
	PluggedSound    *string `json:"plugged_sound,omitempty" yaml:"plugged_sound,omitempty" toml:"plugged_sound,omitempty"`
	Discharging     *bool   `json:"discharging,omitempty" yaml:"discharging,omitempty" toml:"discharging,omitempty"`
	DischargingIcon *string `json:"discharging_icon,omitempty" yaml:"discharging_icon,omitempty" toml:"discharging_icon,omitempty"`
	UnpluggedSound  *string `json:"unplugged_sound,omitempty" yaml:"unplugged_sound,omitempty" toml:"unplugged_sound,omitempty"`
	UrgentLevel     *string `json:"urgent_level,omitempty" yaml:"urgent_level,omitempty" toml:"urgent_level,omitempty"`
}

func (c *ChargerNotification) ShouldNotifyForState(s powerinfo.PowerState) bool {
	switch s {
	case powerinfo.Charging:
		return c.Charging != nil && *c.Charging
	case powerinfo.Discharging:
		return c.Discharging != nil && *c.Discharging
	default:
		return false
	}
}

func (c *ChargerNotification) IconForState(s powerinfo.PowerState) string {
	switch s {
	case powerinfo.Charging:
		return ptr.Deref(c.ChargingIcon, "")
	case powerinfo.Discharging:
		return ptr.Deref(c.DischargingIcon, "")
	default:
		return ""
	}
}

func (c *ChargerNotification) SoundForState(s powerinfo.PowerState) string {
	switch s {
	case powerinfo.Charging:
		return ptr.Deref(c.PluggedSound, "")
	case powerinfo.Discharging:
		return ptr.Deref(c.UnpluggedSound, "")
	default:
		return ""
	}
}

// Urgency returns the configured urgency string, "Normal" if unset.
func (c *ChargerNotification) Urgency() string {
	return urgentLevel(c.UrgentLevel)
}

func urgentLevel(s *string) string {
	if s == nil {
		return defaultUrgentLevel
	}
	return strings.TrimSpace(*s)
}
