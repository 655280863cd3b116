package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversOnlyToTargetUser(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	alice := NewClient(hub, nil, 1)
	bob := NewClient(hub, nil, 2)
	hub.Register(alice)
	hub.Register(bob)

	hub.SendToUser(1, &Event{Type: EventUnreadCount, Payload: map[string]int{"total_unread": 3}})

	select {
	case data := <-alice.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventUnreadCount, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case <-bob.send:
		t.Fatal("unexpected event for another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	c := NewClient(hub, nil, 7)
	hub.Register(c)
	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, hub.Connected(7))
}
