package probe

import (
	"errors"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

// ErrNoBattery is returned by Open when the requested battery does not exist.
var ErrNoBattery = errors.New("no battery found")

// getBattery is swapped in tests.
var getBattery = battery.Get

// Battery is a Probe backed by the operating system battery interface.
type Battery struct {
	index      int
	state      powerinfo.PowerState
	percentage float64
}

var _ Probe = &Battery{}

// Open finds the battery at index and reads it once. Failing to find or read
// the battery is an error, since the daemon cannot run without one.
func Open(index int) (*Battery, error) {
	all, err := battery.GetAll()
	if err != nil && len(all) == 0 {
		return nil, pkgerrors.Wrapf(err, "failed to enumerate batteries")
	}
	if index < 0 || index >= len(all) {
		return nil, pkgerrors.Wrapf(ErrNoBattery, "battery index %d (found %d)", index, len(all))
	}

	b := &Battery{index: index}
	if err := b.Refresh(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"index":      index,
		"state":      b.state,
		"percentage": b.percentage,
	}).Debug("battery opened")

	return b, nil
}

// Refresh implements Probe. On error the previously read values are kept.
func (b *Battery) Refresh() error {
	bat, err := getBattery(b.index)
	if err != nil {
		var partial battery.ErrPartial
		// Many drivers do not report every field. We only need these three.
		if !errors.As(err, &partial) || bat == nil ||
			partial.State != nil || partial.Current != nil || partial.Full != nil {
			return pkgerrors.Wrapf(err, "failed to read battery %d", b.index)
		}
	}
	if bat == nil {
		return pkgerrors.Wrapf(ErrNoBattery, "battery %d", b.index)
	}
	if bat.Full <= 0 {
		return pkgerrors.Errorf("battery %d reports zero full capacity", b.index)
	}

	b.state = normalizeState(bat.State)
	b.percentage = bat.Current / bat.Full
	return nil
}

// State implements Probe.
func (b *Battery) State() powerinfo.PowerState {
	return b.state
}

// Percentage implements Probe.
func (b *Battery) Percentage() float64 {
	return b.percentage
}

// normalizeState folds the hardware states into the three we act on.
func normalizeState(s battery.State) powerinfo.PowerState {
	switch s {
	case battery.Charging, battery.Full:
		return powerinfo.Charging
	case battery.Discharging, battery.Empty:
		return powerinfo.Discharging
	default:
		return powerinfo.Unknown
	}
}
