package enums

import "fmt"

// MessageType separates ordinary chat from system-generated notifications
// that share the message store.
type MessageType string

const (
	MessageTypeChat            MessageType = "chat"
	MessageTypeShiftAssignment MessageType = "shift_assignment"
	MessageTypeBonusAlert      MessageType = "bonus_alert"
)

var validMessageTypes = []MessageType{
	MessageTypeChat,
	MessageTypeShiftAssignment,
	MessageTypeBonusAlert,
}

// String implements fmt.Stringer.
func (m MessageType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MessageType.
func (m MessageType) IsValid() bool {
	for _, candidate := range validMessageTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMessageType converts raw input into a MessageType.
func ParseMessageType(value string) (MessageType, error) {
	for _, candidate := range validMessageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message type %q", value)
}
