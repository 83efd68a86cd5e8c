package config

import (
	"bytes"
	"io"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	pkgerrors "github.com/pkg/errors"
)

// tomlFileConfig mirrors RawFileConfig for TOML, whose table keys are always
// strings.
type tomlFileConfig struct {
	NotificationTime     *int                           `toml:"notification_time,omitempty"`
	PollInterval         *int                           `toml:"poll_interval,omitempty"`
	SoundCommand         *string                        `toml:"sound_command,omitempty"`
	LowBatteryLevels     map[string]BatteryNotification `toml:"low_battery_levels,omitempty"`
	HighBatteryLevels    map[string]BatteryNotification `toml:"high_battery_levels,omitempty"`
	ChargerNotifications *ChargerNotification           `toml:"charger_notifications,omitempty"`
}

func decodeTOML(b []byte) (*RawFileConfig, error) {
	tc := &tomlFileConfig{}
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(tc); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal toml")
	}

	low, err := tableFromTOML(tc.LowBatteryLevels)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "low_battery_levels")
	}
	high, err := tableFromTOML(tc.HighBatteryLevels)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "high_battery_levels")
	}

	return &RawFileConfig{
		NotificationTime:     tc.NotificationTime,
		PollInterval:         tc.PollInterval,
		SoundCommand:         tc.SoundCommand,
		LowBatteryLevels:     low,
		HighBatteryLevels:    high,
		ChargerNotifications: tc.ChargerNotifications,
	}, nil
}

func encodeTOML(w io.Writer, c *RawFileConfig) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(&tomlFileConfig{
		NotificationTime:     c.NotificationTime,
		PollInterval:         c.PollInterval,
		SoundCommand:         c.SoundCommand,
		LowBatteryLevels:     tableToTOML(c.LowBatteryLevels),
		HighBatteryLevels:    tableToTOML(c.HighBatteryLevels),
		ChargerNotifications: c.ChargerNotifications,
	})
}

func tableFromTOML(m map[string]BatteryNotification) (ThresholdTable, error) {
	if m == nil {
		return nil, nil
	}
	t := make(ThresholdTable, len(m))
	for k, n := range m {
		level, err := strconv.ParseUint(k, 10, 8)
		if err != nil {
			return nil, pkgerrors.Errorf("level %q is not a number between 0 and 255", k)
		}
		t[uint8(level)] = n
	}
	return t, nil
}

func tableToTOML(t ThresholdTable) map[string]BatteryNotification {
	if t == nil {
		return nil
	}
	m := make(map[string]BatteryNotification, len(t))
	for level, n := range t {
		m[strconv.Itoa(int(level))] = n
	}
	return m
}
