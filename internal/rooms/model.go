package rooms

import (
	"time"

	"unoroom/internal/deck"
)

// Player is one roster slot in a room. Slots survive disconnects so the
// same playerID can rejoin and reclaim its seat.
type Player struct {
	PlayerID     string `bson:"playerID" json:"playerID"`
	PlayerName   string `bson:"playerName" json:"playerName"`
	ConnectionID string `bson:"connectionID" json:"connectionID"`
	Connected    bool   `bson:"connected" json:"connected"`
}

// Room is the coordination unit for one game instance, persisted as a
// single document keyed by RoomID.
type Room struct {
	RoomID       string      `bson:"roomID" json:"roomID"`
	HostID       string      `bson:"hostID" json:"hostID"`
	HostName     string      `bson:"hostName" json:"hostName"`
	NumOfPlayers int         `bson:"numOfPlayers" json:"numOfPlayers"`
	Players      []Player    `bson:"players" json:"players"`
	ShuffledDeck []deck.Card `bson:"shuffledDeck" json:"shuffledDeck"`
	GameStarted  bool        `bson:"gameStarted" json:"gameStarted"`
	StartTime    int64       `bson:"startTime" json:"startTime"` // epoch milliseconds
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
}

// FindPlayer returns the roster entry with the given playerID, or nil.
// The pointer aliases the room's slice so callers can mutate in place.
func (r *Room) FindPlayer(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].PlayerID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// FindByConnection returns the roster entry holding the given transport
// connection, or nil.
func (r *Room) FindByConnection(connectionID string) *Player {
	for i := range r.Players {
		if r.Players[i].ConnectionID == connectionID {
			return &r.Players[i]
		}
	}
	return nil
}

// ConnectedCount returns how many roster entries are currently live.
func (r *Room) ConnectedCount() int {
	count := 0
	for i := range r.Players {
		if r.Players[i].Connected {
			count++
		}
	}
	return count
}
