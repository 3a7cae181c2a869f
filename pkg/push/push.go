package push

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Event is a real-time notification pushed to connected clients.
type Event struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Payload any    `json:"payload,omitempty"`
}

// Transport delivers events to live subscribers of a room. Implementations
// must not block; delivery is best effort and a failed push never fails the
// operation that produced the event.
type Transport interface {
	Publish(ctx context.Context, room string, event Event) error
}

// UserRoom names the private room a user's connections join.
func UserRoom(userID uuid.UUID) string {
	return fmt.Sprintf("user-%s", userID)
}

// TeamRoom names the shared room for a team's connections.
func TeamRoom(teamID string) string {
	return fmt.Sprintf("team-%s", teamID)
}
