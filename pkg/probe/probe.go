// Package probe reads the power source state from the operating system.
package probe

import (
	"github.com/charlie0129/battnotify/pkg/powerinfo"
)

// Probe is a handle to a single power source. Refresh re-reads the device;
// State and Percentage return the values of the last successful refresh.
type Probe interface {
	Refresh() error
	State() powerinfo.PowerState
	// Percentage returns the remaining charge as a fraction in [0, 1].
	Percentage() float64
}
