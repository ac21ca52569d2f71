package store

import (
	"context"
	"sync"

	"unoroom/internal/deck"
	"unoroom/internal/rooms"
)

// Memory is an in-process rooms.Store with document semantics: reads
// and writes copy the room, so callers never share memory with the
// stored value. Used by tests and when no MONGO_URI is configured.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]*rooms.Room
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]*rooms.Room),
	}
}

func (m *Memory) FindByID(_ context.Context, roomID string) (*rooms.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, rooms.ErrNotFound
	}
	return copyRoom(room), nil
}

func (m *Memory) FindByConnection(_ context.Context, connectionID string) (*rooms.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.FindByConnection(connectionID) != nil {
			return copyRoom(room), nil
		}
	}
	return nil, rooms.ErrNotFound
}

func (m *Memory) Save(_ context.Context, room *rooms.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.RoomID] = copyRoom(room)
	return nil
}

func (m *Memory) Delete(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		return rooms.ErrNotFound
	}
	delete(m.rooms, roomID)
	return nil
}

func copyRoom(room *rooms.Room) *rooms.Room {
	cp := *room
	cp.Players = append([]rooms.Player(nil), room.Players...)
	cp.ShuffledDeck = append([]deck.Card(nil), room.ShuffledDeck...)
	return &cp
}
