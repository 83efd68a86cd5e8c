package events

import "encoding/json"

// Event name constants
const (
	PowerTransition  = "power.transition"
	NotificationSent = "notification.sent"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// PowerTransitionEvent is published when the monitor records a change
// between charging and discharging.
type PowerTransitionEvent struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Percentage int    `json:"percentage"`
	Ts         int64  `json:"ts"`
}

// NotificationSentEvent is published after every delivery attempt.
type NotificationSentEvent struct {
	Summary string `json:"summary"`
	Body    string `json:"body"`
	Urgency string `json:"urgency"`
	Error   string `json:"error,omitempty"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into T. An empty payload yields the
// zero value of T.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
