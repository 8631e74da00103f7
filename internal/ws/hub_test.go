package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// newTestClient builds a client that is never pumped: tests read its send
// buffer directly instead of going through a real connection.
func newTestClient(id string, userID uint) *Client {
	return NewClient(context.Background(), nil, id, userID, fmt.Sprintf("user-%d", userID))
}

// recvEvent pops one queued outgoing event from the client buffer
func recvEvent(t *testing.T, c *Client) OutEvent {
	t.Helper()

	select {
	case data := <-c.send:
		var ev OutEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("failed to unmarshal outgoing event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected an outgoing event, got none")
		return OutEvent{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case data := <-c.send:
		t.Fatalf("expected no outgoing event, got %s", data)
	default:
	}
}

func TestHubPublishToRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	member := newTestClient("a", 1)
	outsider := newTestClient("b", 2)
	hub.Register(member)
	hub.Register(outsider)

	hub.JoinRoom(member, 10)

	hub.PublishToRoom(10, EventNewMessage, map[string]any{"contentText": "hi"})

	ev := recvEvent(t, member)
	if ev.Event != EventNewMessage {
		t.Errorf("event = %q, want %q", ev.Event, EventNewMessage)
	}
	// Exactly once per subscribed connection
	assertNoEvent(t, member)
	assertNoEvent(t, outsider)
}

func TestHubLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	client := newTestClient("a", 1)
	hub.Register(client)
	hub.JoinRoom(client, 10)
	hub.LeaveRoom(client, 10)

	hub.PublishToRoom(10, EventNewMessage, nil)

	assertNoEvent(t, client)
}

func TestHubJoinRoomIsIdempotent(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	client := newTestClient("a", 1)
	hub.Register(client)
	hub.JoinRoom(client, 10)
	hub.JoinRoom(client, 10)

	hub.PublishToRoom(10, EventNewMessage, nil)

	recvEvent(t, client)
	assertNoEvent(t, client)
}

func TestHubPublishToRoomExcept(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sender := newTestClient("a", 1)
	receiver := newTestClient("b", 2)
	hub.Register(sender)
	hub.Register(receiver)
	hub.JoinRoom(sender, 10)
	hub.JoinRoom(receiver, 10)

	hub.PublishToRoomExcept(10, sender, EventUserTyping, TypingData{UserID: 1, GroupID: 10})

	ev := recvEvent(t, receiver)
	if ev.Event != EventUserTyping {
		t.Errorf("event = %q, want %q", ev.Event, EventUserTyping)
	}
	assertNoEvent(t, sender)
}

func TestHubPublishToUserAllConnections(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	first := newTestClient("a", 1)
	second := newTestClient("b", 1)
	other := newTestClient("c", 2)
	hub.Register(first)
	hub.Register(second)
	hub.Register(other)

	hub.PublishToUser(1, "notification-1", map[string]any{"id": 5})

	recvEvent(t, first)
	recvEvent(t, second)
	assertNoEvent(t, other)
}

func TestHubPublishToUnknownRoom(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	// Publishing into a room nobody ever joined must not panic or create it
	hub.PublishToRoom(99, EventNewMessage, nil)

	if subs := hub.Subscribers(99); len(subs) != 0 {
		t.Errorf("Subscribers(99) = %d clients, want 0", len(subs))
	}
}

func TestHubUserSubscribed(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	first := newTestClient("a", 1)
	second := newTestClient("b", 1)
	hub.Register(first)
	hub.Register(second)
	hub.JoinRoom(first, 10)
	hub.JoinRoom(second, 10)

	if !hub.UserSubscribed(10, 1) {
		t.Fatal("UserSubscribed = false with two live connections")
	}

	// Уход одного соединения не выписывает пользователя из комнаты
	hub.Unregister(first)
	if !hub.UserSubscribed(10, 1) {
		t.Error("UserSubscribed = false while a connection remains")
	}

	hub.Unregister(second)
	if hub.UserSubscribed(10, 1) {
		t.Error("UserSubscribed = true after the last connection left")
	}

	if hub.UserSubscribed(99, 1) {
		t.Error("UserSubscribed = true for an unknown room")
	}
}

func TestHubUnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	client := newTestClient("a", 1)
	hub.Register(client)
	hub.JoinRoom(client, 10)
	hub.JoinRoom(client, 20)

	left := hub.Unregister(client)
	if len(left) != 2 {
		t.Fatalf("Unregister returned %d groups, want 2", len(left))
	}

	if len(hub.Subscribers(10)) != 0 || len(hub.Subscribers(20)) != 0 {
		t.Error("client still subscribed after Unregister")
	}

	// No more user-addressed delivery either
	hub.PublishToUser(1, "notification-1", nil)
	assertNoEvent(t, client)
}

func TestHubSlowReceiverIsDropped(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	slow := newTestClient("a", 1)
	fast := newTestClient("b", 2)
	hub.Register(slow)
	hub.Register(fast)
	hub.JoinRoom(slow, 10)
	hub.JoinRoom(fast, 10)

	// Saturate the slow receiver's buffer
	for i := 0; i < maxSendChannelSize; i++ {
		slow.SendRaw([]byte("{}"))
	}

	dropped := hub.Metrics().Dropped.Load()
	hub.PublishToRoom(10, EventNewMessage, nil)

	// The healthy receiver still gets the event
	recvEvent(t, fast)

	if got := hub.Metrics().Dropped.Load(); got != dropped+1 {
		t.Errorf("Dropped = %d, want %d", got, dropped+1)
	}
}

func TestHubCleanupRemovesEmptyRooms(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	client := newTestClient("a", 1)
	hub.Register(client)
	hub.JoinRoom(client, 10)
	hub.LeaveRoom(client, 10)

	hub.cleanupEmptyRooms()

	hub.mu.RLock()
	_, exists := hub.rooms[10]
	hub.mu.RUnlock()

	if exists {
		t.Error("empty room survived cleanup")
	}
}

func TestRoomSnapshotIsStable(t *testing.T) {
	room := NewRoom(10)
	a := newTestClient("a", 1)
	b := newTestClient("b", 2)
	room.Add(a)
	room.Add(b)

	snapshot := room.Snapshot()
	room.Remove(a)

	if len(snapshot) != 2 {
		t.Errorf("snapshot length = %d, want 2", len(snapshot))
	}
	if room.Size() != 1 {
		t.Errorf("room size = %d, want 1", room.Size())
	}
}
