package monitor

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/config"
	"github.com/charlie0129/battnotify/pkg/notify"
	"github.com/charlie0129/battnotify/pkg/powerinfo"
	"github.com/charlie0129/battnotify/pkg/probe"
)

// Emitter delivers a notification and plays its sound (if any).
type Emitter interface {
	Emit(req notify.Request, sound string)
}

// BatteryStats tracks the power state of the battery across ticks.
//
// PrevState is the last confirmed state and is never Unknown.
// LastNotifiedState only changes when a charger transition is detected.
type BatteryStats struct {
	PrevState         powerinfo.PowerState `json:"prevState"`
	LastNotifiedState powerinfo.PowerState `json:"lastNotifiedState"`
	CurrentState      powerinfo.PowerState `json:"currentState"`
	Percentage        int                  `json:"percentage"`
}

// NewBatteryStats builds the stats from a first successful read of p.
// PrevState is seeded with the opposite of the current state so that the
// first real transition is detected.
func NewBatteryStats(p probe.Probe) (*BatteryStats, error) {
	if err := p.Refresh(); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read initial battery state")
	}

	current := p.State()
	return &BatteryStats{
		PrevState:         current.Opposite(),
		LastNotifiedState: current,
		CurrentState:      current,
		Percentage:        toPercentage(p.Percentage()),
	}, nil
}

// Refresh re-reads the probe. A failed read keeps the last snapshot.
func (b *BatteryStats) Refresh(p probe.Probe) {
	if err := p.Refresh(); err != nil {
		logrus.Debugf("failed to refresh battery, keeping last reading: %v", err)
		return
	}

	b.CurrentState = p.State()
	b.Percentage = toPercentage(p.Percentage())
}

// InferredState returns the current state, resolving Unknown to the
// opposite of the previous state. Unknown is typically reported for a
// moment while the adapter is being plugged in or out.
func (b *BatteryStats) InferredState() powerinfo.PowerState {
	if b.CurrentState == powerinfo.Unknown {
		return b.PrevState.Opposite()
	}
	return b.CurrentState
}

// HandleChargerNotifications sends at most one charger notification when the
// inferred state differs from the last notified one. The dedup key is
// updated even if the notification is disabled, so enabling it later does
// not produce stale notifications.
func (b *BatteryStats) HandleChargerNotifications(charger *config.ChargerNotification, timeoutMs int, e Emitter) {
	inferred := b.InferredState()
	if inferred == b.LastNotifiedState {
		return
	}

	logrus.WithFields(logrus.Fields{
		"from":       b.LastNotifiedState,
		"to":         inferred,
		"reported":   b.CurrentState,
		"percentage": b.Percentage,
	}).Info("charger state changed")

	b.LastNotifiedState = inferred

	if charger == nil || !charger.ShouldNotifyForState(inferred) {
		return
	}

	e.Emit(notify.Request{
		IDHint:    notify.BatteryIDHint,
		Summary:   inferred.String(),
		Body:      RemainingBody(b.Percentage),
		Icon:      charger.IconForState(inferred),
		Urgency:   notify.ParseUrgency(charger.Urgency()),
		TimeoutMs: timeoutMs,
	}, charger.SoundForState(inferred))
}

// HandleBatteryStateChange records a state transition and re-arms every
// threshold. An Unknown reading clears fired but is not recorded.
// It reports whether a transition happened.
func (b *BatteryStats) HandleBatteryStateChange(fired FiredSet) bool {
	if b.CurrentState == b.PrevState {
		return false
	}

	if b.CurrentState != powerinfo.Unknown {
		b.PrevState = b.CurrentState
	}
	fired.Clear()

	return true
}

func (b *BatteryStats) String() string {
	return fmt.Sprintf("prev=%s lastNotified=%s current=%s percentage=%d%%",
		b.PrevState, b.LastNotifiedState, b.CurrentState, b.Percentage)
}

// RemainingBody is the body shared by every battery notification.
func RemainingBody(percentage int) string {
	return fmt.Sprintf("%d%% of battery remaining", percentage)
}

// toPercentage truncates a [0, 1] fraction to an integer percentage.
func toPercentage(fraction float64) int {
	p := int(fraction * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
