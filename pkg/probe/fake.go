package probe

import (
	"errors"

	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

// Sample is a single scripted reading for Fake.
type Sample struct {
	State      powerinfo.PowerState
	Percentage float64
	// Err, if set, makes the Refresh that consumes this sample fail.
	Err error
}

// Fake is a Probe that replays scripted samples. Each Refresh consumes the
// next sample; once exhausted the last sample is repeated.
type Fake struct {
	Samples []Sample

	index      int
	refreshes  int
	state      powerinfo.PowerState
	percentage float64
}

var _ Probe = &Fake{}

// NewFake creates a Fake with the given samples.
func NewFake(samples ...Sample) *Fake {
	return &Fake{Samples: samples}
}

// Refresh implements Probe.
func (f *Fake) Refresh() error {
	if len(f.Samples) == 0 {
		return errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	f.refreshes++

	if s.Err != nil {
		return s.Err
	}
	f.state = s.State
	f.percentage = s.Percentage
	return nil
}

// State implements Probe.
func (f *Fake) State() powerinfo.PowerState {
	return f.state
}

// Percentage implements Probe.
func (f *Fake) Percentage() float64 {
	return f.percentage
}

// Refreshes returns how many times Refresh was called.
func (f *Fake) Refreshes() int {
	return f.refreshes
}
