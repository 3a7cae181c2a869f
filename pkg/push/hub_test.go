package push

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub(nil)
	userID := uuid.New()

	member := NewClient(hub, nil, UserRoom(userID), TeamRoom("team1"))
	outsider := NewClient(hub, nil, TeamRoom("team2"))
	hub.Register(member)
	hub.Register(outsider)

	err := hub.Publish(context.Background(), UserRoom(userID), Event{Type: "notification", Payload: "hi"})
	require.NoError(t, err)

	select {
	case raw := <-member.send:
		var evt Event
		require.NoError(t, json.Unmarshal(raw, &evt))
		assert.Equal(t, "notification", evt.Type)
		assert.Equal(t, UserRoom(userID), evt.Room)
	default:
		t.Fatal("expected member to receive the event")
	}

	assert.Empty(t, outsider.send)
}

func TestPublishDropsWhenClientBufferFull(t *testing.T) {
	hub := NewHub(nil)
	c := NewClient(hub, nil, TeamRoom("team1"))
	hub.Register(c)

	for i := 0; i < sendBufferSize+5; i++ {
		err := hub.Publish(context.Background(), TeamRoom("team1"), Event{Type: "tick"})
		require.NoError(t, err)
	}

	assert.Len(t, c.send, sendBufferSize)
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(nil)
	c := NewClient(hub, nil, TeamRoom("team1"))
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	_, open := <-c.send
	assert.False(t, open)

	// Double unregister is a no-op.
	hub.Unregister(c)
}
