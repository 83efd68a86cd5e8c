package monitor

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/notify"
	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

// FiredSet holds the threshold levels that have already notified since the
// last power state transition.
type FiredSet map[uint8]struct{}

func NewFiredSet() FiredSet {
	return make(FiredSet)
}

func (f FiredSet) Has(level uint8) bool {
	_, ok := f[level]
	return ok
}

func (f FiredSet) Add(level uint8) {
	f[level] = struct{}{}
}

func (f FiredSet) Clear() {
	for l := range f {
		delete(f, l)
	}
}

// Levels returns the fired levels in ascending order.
func (f FiredSet) Levels() []uint8 {
	levels := make([]uint8, 0, len(f))
	for l := range f {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// HandleBattery fires every threshold crossed by the current percentage that
// has not fired yet in this epoch. While discharging the low table is walked
// from the highest level down, firing when percentage <= level; while
// charging the high table is walked upwards, firing when percentage >= level.
// A large jump between two ticks therefore fires every skipped level once,
// in crossing order. Nothing happens while the state is Unknown.
func (b *BatteryStats) HandleBattery(low, high config.ThresholdTable, timeoutMs int, fired FiredSet, e Emitter) {
	var (
		table   config.ThresholdTable
		levels  []uint8
		crossed func(level int) bool
	)

	switch b.CurrentState {
	case powerinfo.Discharging:
		table, levels = low, low.Descending()
		crossed = func(level int) bool { return b.Percentage <= level }
	case powerinfo.Charging:
		table, levels = high, high.Ascending()
		crossed = func(level int) bool { return b.Percentage >= level }
	default:
		return
	}

	for _, level := range levels {
		if !crossed(int(level)) || fired.Has(level) {
			continue
		}

		// Marked before sending: a failed delivery is not retried.
		fired.Add(level)

		n := table[level]
		logrus.WithFields(logrus.Fields{
			"level":      level,
			"state":      b.CurrentState,
			"percentage": b.Percentage,
		}).Debug("battery threshold crossed")

		e.Emit(notify.Request{
			IDHint:    notify.BatteryIDHint,
			Summary:   n.Message,
			Body:      RemainingBody(b.Percentage),
			Icon:      n.Icon(),
			Urgency:   notify.ParseUrgency(n.Urgency()),
			TimeoutMs: timeoutMs,
		}, n.Sound())
	}
}
