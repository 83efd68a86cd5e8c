// Package monitor turns battery readings into charger and threshold
// notifications.
package monitor

import (
	"time"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/powerinfo"
	"github.com/charlie0129/battnotify/pkg/probe"
)

// Snapshot is a copy of the monitor state after a tick.
type Snapshot struct {
	Stats         BatteryStats         `json:"stats"`
	InferredState powerinfo.PowerState `json:"inferredState"`
	FiredLevels   []int                `json:"firedLevels"`
	// Transition is true if the tick confirmed a change between charging
	// and discharging. The new state is Stats.CurrentState.
	Transition bool `json:"transition"`
	// Rearmed is true if the tick cleared the fired thresholds. This also
	// happens on Unknown readings and on the first reading after start.
	Rearmed bool      `json:"rearmed"`
	Ticks   uint64    `json:"ticks"`
	Time    time.Time `json:"time"`
}

// Monitor owns the engine state. It is not safe for concurrent use: all
// calls must come from the polling goroutine.
type Monitor struct {
	probe   probe.Probe
	conf    config.Config
	emitter Emitter

	stats *BatteryStats
	fired FiredSet
	// confirmed is the last state seen from the battery, Unknown until the
	// first real reading. Unlike stats.PrevState it is never seeded.
	confirmed powerinfo.PowerState
	ticks     uint64
	now       func() time.Time
}

// New reads the probe once and returns a Monitor. It fails if the probe
// cannot be read.
func New(p probe.Probe, conf config.Config, e Emitter) (*Monitor, error) {
	stats, err := NewBatteryStats(p)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		probe:     p,
		conf:      conf,
		emitter:   e,
		stats:     stats,
		fired:     NewFiredSet(),
		confirmed: stats.CurrentState,
		now:       time.Now,
	}, nil
}

// SetConfig replaces the configuration used from the next tick on. Fired
// thresholds are kept.
func (m *Monitor) SetConfig(conf config.Config) {
	m.conf = conf
}

// Tick runs a single poll. The order matters: threshold handling must see
// the fired set already cleared if this tick is a transition.
func (m *Monitor) Tick() Snapshot {
	timeout := m.conf.NotificationTime()

	m.stats.Refresh(m.probe)
	m.stats.HandleChargerNotifications(m.conf.ChargerNotifications(), timeout, m.emitter)
	rearmed := m.stats.HandleBatteryStateChange(m.fired)
	m.stats.HandleBattery(m.conf.LowBatteryLevels(), m.conf.HighBatteryLevels(), timeout, m.fired, m.emitter)

	transition := false
	if cur := m.stats.CurrentState; cur != powerinfo.Unknown && cur != m.confirmed {
		transition = m.confirmed != powerinfo.Unknown
		m.confirmed = cur
	}

	m.ticks++
	s := m.Snapshot()
	s.Transition = transition
	s.Rearmed = rearmed
	return s
}

// Snapshot returns a copy of the current state.
func (m *Monitor) Snapshot() Snapshot {
	return Snapshot{
		Stats:         *m.stats,
		InferredState: m.stats.InferredState(),
		FiredLevels:   toInts(m.fired.Levels()),
		Ticks:         m.ticks,
		Time:          m.now(),
	}
}

// toInts keeps levels readable in JSON, where []uint8 would be base64.
func toInts(levels []uint8) []int {
	ret := make([]int, 0, len(levels))
	for _, l := range levels {
		ret = append(ret, int(l))
	}
	return ret
}
