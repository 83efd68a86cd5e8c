package powerinfo

// PowerState represents the operative charging state of the battery.
// Hardware states such as full or empty are folded into Charging and
// Discharging by the probe before they get here.
type PowerState int

const (
	// Unknown is a transient reading, usually seen while the AC adapter is
	// being plugged in or out. It is never recorded as a previous state.
	Unknown PowerState = iota
	// Charging indicates the battery is charging (or full on AC).
	Charging
	// Discharging indicates the battery is discharging (or empty).
	Discharging
)

// String returns the human-readable label, which is also used as the
// summary of charger notifications.
func (s PowerState) String() string {
	switch s {
	case Charging:
		return "Charging"
	case Discharging:
		return "Discharging"
	default:
		return "Unknown"
	}
}

// Opposite returns Charging for Discharging and Discharging otherwise.
func (s PowerState) Opposite() PowerState {
	if s == Discharging {
		return Charging
	}
	return Discharging
}

// MarshalText implements encoding.TextMarshaler.
func (s PowerState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PowerState) UnmarshalText(b []byte) error {
	*s = ParsePowerState(string(b))
	return nil
}

// ParsePowerState parses a label produced by String. Anything unrecognized
// becomes Unknown.
func ParsePowerState(str string) PowerState {
	switch str {
	case "Charging":
		return Charging
	case "Discharging":
		return Discharging
	default:
		return Unknown
	}
}
