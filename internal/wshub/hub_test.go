package wshub

import (
	"encoding/json"
	"testing"
	"time"
)

func recv(t *testing.T, c *Client) ServerMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var got ServerMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received")
		return ServerMessage{}
	}
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	h := NewHub()

	c1 := &Client{ID: "conn-1", Send: make(chan []byte, 16)}
	c2 := &Client{ID: "conn-2", Send: make(chan []byte, 16)}
	c3 := &Client{ID: "conn-3", Send: make(chan []byte, 16)}

	h.Register(c1)
	h.Register(c2)
	h.Register(c3)
	h.Join("R1", "conn-1")
	h.Join("R1", "conn-2")
	// conn-3 never joins R1

	h.Broadcast("R1", "waiting", map[string]int{"playersCount": 2})

	got := recv(t, c1)
	if got.Event != "waiting" {
		t.Fatalf("event = %q, want %q", got.Event, "waiting")
	}
	recv(t, c2)

	select {
	case <-c3.Send:
		t.Fatal("conn-3 should not receive room broadcasts")
	default:
		// expected
	}
}

func TestEmitTargetsSingleConnection(t *testing.T) {
	h := NewHub()

	c1 := &Client{ID: "conn-1", Send: make(chan []byte, 16)}
	c2 := &Client{ID: "conn-2", Send: make(chan []byte, 16)}
	h.Register(c1)
	h.Register(c2)

	h.Emit("conn-1", "joinRoomError", map[string]string{"message": "Room not found"})

	got := recv(t, c1)
	if got.Event != "joinRoomError" {
		t.Fatalf("event = %q, want %q", got.Event, "joinRoomError")
	}

	select {
	case <-c2.Send:
		t.Fatal("conn-2 should not receive a targeted emit")
	default:
		// expected
	}
}

func TestUnregisterClosesAndLeavesGroups(t *testing.T) {
	h := NewHub()

	c1 := &Client{ID: "conn-1", Send: make(chan []byte, 16)}
	c2 := &Client{ID: "conn-2", Send: make(chan []byte, 16)}
	h.Register(c1)
	h.Register(c2)
	h.Join("R1", "conn-1")
	h.Join("R1", "conn-2")

	h.Unregister("conn-1")

	// conn-1's Send channel should be closed
	if _, ok := <-c1.Send; ok {
		t.Fatal("conn-1.Send should be closed")
	}

	// Broadcasts still reach the remaining member only
	h.Broadcast("R1", "waiting", nil)
	recv(t, c2)
}

func TestUnregisterNonexistent(t *testing.T) {
	h := NewHub()
	// Should not panic
	h.Unregister("nonexistent")
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	h := NewHub()

	// Channel with capacity 1
	c := &Client{ID: "conn-1", Send: make(chan []byte, 1)}
	h.Register(c)
	h.Join("R1", "conn-1")

	// Fill the channel
	c.Send <- []byte("filler")

	// This should not block — message dropped
	h.Broadcast("R1", "waiting", nil)

	data := <-c.Send
	if string(data) != "filler" {
		t.Fatalf("expected filler, got: %s", data)
	}

	select {
	case <-c.Send:
		t.Fatal("should be empty after draining filler")
	default:
		// expected
	}
}

func TestBroadcastUnknownRoom(t *testing.T) {
	h := NewHub()
	// Should not panic
	h.Broadcast("missing", "waiting", nil)
}
