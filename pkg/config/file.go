package config

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/charlie0129/battnotify/pkg/utils/ptr"
)

const (
	defaultNotificationTime = 5000
	defaultPollInterval     = 1000
)

// ErrNoConfigFile is returned by Load when the config file does not exist.
var ErrNoConfigFile = pkgerrors.New("config file does not exist")

var (
	defaultFileConfig = &RawFileConfig{
		NotificationTime: ptr.To(defaultNotificationTime),
		PollInterval:     ptr.To(defaultPollInterval),
		LowBatteryLevels: ThresholdTable{
			20: {Message: "Battery low", NotificationIcon: ptr.To("battery-low")},
			10: {Message: "Battery very low", NotificationIcon: ptr.To("battery-caution"), UrgentLevel: ptr.To("Critical")},
			5:  {Message: "Battery critically low, plug in now", NotificationIcon: ptr.To("battery-empty"), UrgentLevel: ptr.To("Critical")},
		},
		HighBatteryLevels: ThresholdTable{
			80:  {Message: "Battery charged to 80%", NotificationIcon: ptr.To("battery-good")},
			100: {Message: "Battery full", NotificationIcon: ptr.To("battery-full-charged")},
		},
		ChargerNotifications: &ChargerNotification{
			Charging:        ptr.To(true),
			ChargingIcon:    ptr.To("battery-good-charging"),
			Discharging:     ptr.To(true),
			DischargingIcon: ptr.To("battery-good"),
		},
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

// NewFile loads the config file at configPath. A missing or malformed file
// is an error.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewDefault returns the built-in default configuration. It has no backing
// file, so Load is a no-op and Save fails unless a path is given.
func NewDefault(configPath string) *File {
	return NewFileFromConfig(DefaultRawFileConfig(), configPath)
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = DefaultRawFileConfig()
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	// NotificationTime in milliseconds.
	NotificationTime *int `json:"notification_time,omitempty" yaml:"notification_time,omitempty"`
	// PollInterval in milliseconds.
	PollInterval         *int                 `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	SoundCommand         *string              `json:"sound_command,omitempty" yaml:"sound_command,omitempty"`
	LowBatteryLevels     ThresholdTable       `json:"low_battery_levels,omitempty" yaml:"low_battery_levels,omitempty"`
	HighBatteryLevels    ThresholdTable       `json:"high_battery_levels,omitempty" yaml:"high_battery_levels,omitempty"`
	ChargerNotifications *ChargerNotification `json:"charger_notifications,omitempty" yaml:"charger_notifications,omitempty"`
}

// DefaultRawFileConfig returns a deep copy of the built-in defaults.
func DefaultRawFileConfig() *RawFileConfig {
	b, err := json.Marshal(defaultFileConfig)
	if err != nil {
		panic(err)
	}
	c := &RawFileConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		panic(err)
	}
	return c
}

// Validate checks the values that cannot be defaulted.
func (r *RawFileConfig) Validate() error {
	if r.NotificationTime != nil && (*r.NotificationTime < -1 || *r.NotificationTime > math.MaxInt32) {
		return pkgerrors.Errorf("notification_time must be -1 (server default) or between 0 and %d, got %d", math.MaxInt32, *r.NotificationTime)
	}
	if r.PollInterval != nil && *r.PollInterval <= 0 {
		return pkgerrors.Errorf("poll_interval must be positive, got %d", *r.PollInterval)
	}
	for name, table := range map[string]ThresholdTable{
		"low_battery_levels":  r.LowBatteryLevels,
		"high_battery_levels": r.HighBatteryLevels,
	} {
		for level, n := range table {
			if level > 100 {
				return pkgerrors.Errorf("%s: level %d is out of range 0-100", name, level)
			}
			if strings.TrimSpace(n.Message) == "" {
				return pkgerrors.Errorf("%s: level %d has no message", name, level)
			}
		}
	}
	return nil
}

func (f *File) NotificationTime() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	return ptr.Deref(f.c.NotificationTime, *defaultFileConfig.NotificationTime)
}

func (f *File) PollInterval() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	ms := ptr.Deref(f.c.PollInterval, *defaultFileConfig.PollInterval)
	return time.Duration(ms) * time.Millisecond
}

func (f *File) SoundCommand() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	return ptr.Deref(f.c.SoundCommand, "")
}

func (f *File) LowBatteryLevels() ThresholdTable {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	return f.c.LowBatteryLevels
}

func (f *File) HighBatteryLevels() ThresholdTable {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	return f.c.HighBatteryLevels
}

func (f *File) ChargerNotifications() *ChargerNotification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	return f.c.ChargerNotifications
}

func (f *File) Raw() *RawFileConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		panic("config is nil")
	}

	c := *f.c
	return &c
}

// Path returns the backing file path, empty for an unsaved default config.
func (f *File) Path() string {
	return f.filepath
}

// Load re-reads the backing file. The current configuration is only replaced
// when the new one parses and validates, so a bad edit followed by a reload
// keeps the daemon running on the previous configuration.
func (f *File) Load() error {
	if f.filepath == "" {
		if f.c == nil {
			return pkgerrors.New("no config file path given")
		}
		return nil
	}

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.Wrapf(ErrNoConfigFile, "%s", f.filepath)
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	conf, err := Parse(b, formatOf(f.filepath))
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to load config from file %s", f.filepath)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c = conf

	return nil
}

// Format is the encoding of a config file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Parse decodes and validates a configuration document. An empty document
// is an error: running with defaults has to be asked for explicitly.
func Parse(b []byte, format Format) (*RawFileConfig, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, pkgerrors.New("config is empty")
	}

	conf := &RawFileConfig{}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(conf); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to unmarshal yaml")
		}
	case FormatTOML:
		var err error
		conf, err = decodeTOML(b)
		if err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(conf); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to unmarshal json")
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}
	if f.filepath == "" {
		return pkgerrors.New("no config file path given")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	switch formatOf(f.filepath) {
	case FormatYAML:
		enc := yaml.NewEncoder(fp)
		enc.SetIndent(2)
		err = enc.Encode(f.c)
		if err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = encodeTOML(fp, f.c)
	default:
		enc := json.NewEncoder(fp)
		enc.SetIndent("", "  ")
		err = enc.Encode(f.c)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"path":                 f.filepath,
		"notificationTime":     f.NotificationTime(),
		"pollInterval":         f.PollInterval().String(),
		"lowBatteryLevels":     f.LowBatteryLevels().Descending(),
		"highBatteryLevels":    f.HighBatteryLevels().Ascending(),
		"chargerNotifications": f.ChargerNotifications() != nil,
	}
}

// formatOf picks the encoding from the file extension, JSON by default.
func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}
