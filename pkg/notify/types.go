// Package notify delivers desktop notifications.
package notify

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Urgency is the freedesktop notification urgency hint.
type Urgency byte

const (
	Low      Urgency = 0
	Normal   Urgency = 1
	Critical Urgency = 2
)

const (
	// DefaultTimeout is used when no notification time is configured, in ms.
	DefaultTimeout = 5000
	// BatteryIDHint groups every battery notification so that a new one
	// replaces the previous one on screen.
	BatteryIDHint = "battery_notif"
)

func (u Urgency) String() string {
	switch u {
	case Low:
		return "Low"
	case Normal:
		return "Normal"
	case Critical:
		return "Critical"
	default:
		return "Unknown"
	}
}

func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// ParseUrgency parses a configured urgency level. Unrecognized values fall
// back to Normal with a warning.
func ParseUrgency(s string) Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low
	case "normal", "medium":
		return Normal
	case "critical", "high":
		return Critical
	default:
		logrus.WithField("urgency", s).Warn("unsupported urgency level, defaulting to Normal")
		return Normal
	}
}

// Request is a single notification handed to a Sink.
type Request struct {
	IDHint  string  `json:"idHint,omitempty"`
	Summary string  `json:"summary"`
	Body    string  `json:"body"`
	Icon    string  `json:"icon,omitempty"`
	Urgency Urgency `json:"urgency"`
	// TimeoutMs is how long the notification is shown. -1 leaves it to the
	// notification server, 0 never expires.
	TimeoutMs int `json:"timeoutMs"`
}

// Sink shows notifications to the user.
type Sink interface {
	Send(req Request) error
}
