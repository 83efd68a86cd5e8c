package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

const jsonConfig = `{
  "notification_time": 3000,
  "low_battery_levels": {
    "20": {"message": "Battery low", "notification_icon": "battery-low"},
    "10": {"message": "Battery very low", "urgent_level": "Critical", "notification_sound": "low.ogg"}
  },
  "high_battery_levels": {
    "80": {"message": "Battery charged"}
  },
  "charger_notifications": {
    "charging": true,
    "charging_icon": "battery-charging",
    "plugged_sound": "battery_charging.ogg",
    "discharging": false,
    "urgent_level": " Low "
  }
}`

const yamlConfig = `
poll_interval: 2000
low_battery_levels:
  15:
    message: Plug in soon
charger_notifications:
  discharging: true
  unplugged_sound: battery_discharging.mp3
`

const tomlConfig = `
notification_time = 2500
sound_command = "paplay --volume 40000"

[low_battery_levels.15]
message = "Plug in soon"
urgent_level = "Critical"

[high_battery_levels.90]
message = "Unplug now"
notification_icon = "battery-full"

[charger_notifications]
charging = true
plugged_sound = "bell"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestNewFileJSON(t *testing.T) {
	f, err := NewFile(writeFile(t, "config.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, 3000, f.NotificationTime())
	assert.Equal(t, time.Second, f.PollInterval())
	assert.Equal(t, []uint8{20, 10}, f.LowBatteryLevels().Descending())
	assert.Equal(t, []uint8{80}, f.HighBatteryLevels().Ascending())

	low := f.LowBatteryLevels()
	assert.Equal(t, "battery-low", low[20].Icon())
	assert.Equal(t, "", low[20].Sound())
	assert.Equal(t, "Normal", low[20].Urgency())
	assert.Equal(t, "Critical", low[10].Urgency())
	assert.Equal(t, "low.ogg", low[10].Sound())

	c := f.ChargerNotifications()
	require.NotNil(t, c)
	assert.True(t, c.ShouldNotifyForState(powerinfo.Charging))
	assert.False(t, c.ShouldNotifyForState(powerinfo.Discharging))
	assert.False(t, c.ShouldNotifyForState(powerinfo.Unknown))
	assert.Equal(t, "battery-charging", c.IconForState(powerinfo.Charging))
	assert.Equal(t, "", c.IconForState(powerinfo.Discharging))
	assert.Equal(t, "battery_charging.ogg", c.SoundForState(powerinfo.Charging))
	assert.Equal(t, "Low", c.Urgency())
}

func TestNewFileYAML(t *testing.T) {
	f, err := NewFile(writeFile(t, "config.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, 5000, f.NotificationTime())
	assert.Equal(t, 2*time.Second, f.PollInterval())
	assert.Equal(t, "Plug in soon", f.LowBatteryLevels()[15].Message)
	assert.Nil(t, f.HighBatteryLevels())

	c := f.ChargerNotifications()
	require.NotNil(t, c)
	assert.True(t, c.ShouldNotifyForState(powerinfo.Discharging))
	assert.False(t, c.ShouldNotifyForState(powerinfo.Charging))
	assert.Equal(t, "battery_discharging.mp3", c.SoundForState(powerinfo.Discharging))
}

func TestNewFileTOML(t *testing.T) {
	f, err := NewFile(writeFile(t, "config.toml", tomlConfig))
	require.NoError(t, err)

	assert.Equal(t, 2500, f.NotificationTime())
	assert.Equal(t, time.Second, f.PollInterval())
	assert.Equal(t, "paplay --volume 40000", f.SoundCommand())
	assert.Equal(t, "Plug in soon", f.LowBatteryLevels()[15].Message)
	assert.Equal(t, "Critical", f.LowBatteryLevels()[15].Urgency())
	assert.Equal(t, "battery-full", f.HighBatteryLevels()[90].Icon())

	c := f.ChargerNotifications()
	require.NotNil(t, c)
	assert.True(t, c.ShouldNotifyForState(powerinfo.Charging))
	assert.False(t, c.ShouldNotifyForState(powerinfo.Discharging))
	assert.Equal(t, "bell", c.SoundForState(powerinfo.Charging))
}

func TestNewFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"empty", "c.json", "  \n"},
		{"malformed json", "c.json", `{"low_battery_levels": `},
		{"unknown field", "c.json", `{"notification_tme": 10}`},
		{"level overflow", "c.json", `{"low_battery_levels": {"300": {"message": "x"}}}`},
		{"level out of range", "c.json", `{"high_battery_levels": {"101": {"message": "x"}}}`},
		{"missing message", "c.yml", "low_battery_levels:\n  10:\n    notification_icon: x\n"},
		{"bad poll interval", "c.json", `{"poll_interval": 0}`},
		{"bad notification time", "c.json", `{"notification_time": -5}`},
		{"notification time overflows int32", "c.json", `{"notification_time": 3000000000}`},
		{"malformed toml", "c.toml", "notification_time = \n"},
		{"unknown toml field", "c.toml", "notification_tme = 10\n"},
		{"non-numeric toml level", "c.toml", "[low_battery_levels.low]\nmessage = \"x\"\n"},
		{"toml level out of range", "c.toml", "[high_battery_levels.101]\nmessage = \"x\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFile(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNewFileMissing(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoConfigFile))
}

func TestReloadKeepsPreviousOnError(t *testing.T) {
	p := writeFile(t, "config.json", jsonConfig)
	f, err := NewFile(p)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p, []byte(`{"notification_time": `), 0644))
	assert.Error(t, f.Load())
	assert.Equal(t, 3000, f.NotificationTime())

	require.NoError(t, os.WriteFile(p, []byte(`{"notification_time": 1000}`), 0644))
	require.NoError(t, f.Load())
	assert.Equal(t, 1000, f.NotificationTime())
	assert.Nil(t, f.ChargerNotifications())
}

func TestDefaultSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"battnotify.json", "battnotify.yaml", "battnotify.toml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "sub", name)
			d := NewDefault(p)
			require.NoError(t, d.Save())

			f, err := NewFile(p)
			require.NoError(t, err)
			assert.Equal(t, d.Raw(), f.Raw())
			assert.Equal(t, []uint8{20, 10, 5}, f.LowBatteryLevels().Descending())
		})
	}
}

func TestDefaultRawFileConfigIsCopy(t *testing.T) {
	a := DefaultRawFileConfig()
	delete(a.LowBatteryLevels, 20)
	b := DefaultRawFileConfig()
	assert.Contains(t, b.LowBatteryLevels, uint8(20))
}

func TestNotificationTimeUpperBound(t *testing.T) {
	_, err := Parse([]byte(`{"notification_time": 2147483647}`), FormatJSON)
	assert.NoError(t, err)

	_, err = Parse([]byte(`{"notification_time": 2147483648}`), FormatJSON)
	assert.ErrorContains(t, err, "notification_time")
}
