package enums

import "fmt"

// ScheduleType labels the intent of a published schedule.
type ScheduleType string

const (
	ScheduleTypeWork     ScheduleType = "work"
	ScheduleTypeTraining ScheduleType = "training"
	ScheduleTypeMeeting  ScheduleType = "meeting"
)

var validScheduleTypes = []ScheduleType{
	ScheduleTypeWork,
	ScheduleTypeTraining,
	ScheduleTypeMeeting,
}

// String implements fmt.Stringer.
func (s ScheduleType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScheduleType.
func (s ScheduleType) IsValid() bool {
	for _, candidate := range validScheduleTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScheduleType converts raw input into a ScheduleType.
func ParseScheduleType(value string) (ScheduleType, error) {
	for _, candidate := range validScheduleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid schedule type %q", value)
}
