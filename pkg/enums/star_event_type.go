package enums

import "fmt"

// StarEventType classifies entries in the star history log.
type StarEventType string

const (
	StarEventEarned StarEventType = "earned"
	StarEventSpent  StarEventType = "spent"
	StarEventReset  StarEventType = "reset"
)

var validStarEventTypes = []StarEventType{
	StarEventEarned,
	StarEventSpent,
	StarEventReset,
}

// String implements fmt.Stringer.
func (s StarEventType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StarEventType.
func (s StarEventType) IsValid() bool {
	for _, candidate := range validStarEventTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStarEventType converts raw input into a StarEventType.
func ParseStarEventType(value string) (StarEventType, error) {
	for _, candidate := range validStarEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid star event type %q", value)
}
