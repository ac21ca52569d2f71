package rooms

import "unoroom/internal/deck"

// Event names sent over the room broadcast channel. These are the wire
// names clients listen on, so they stay in their original casing.
const (
	EventStartGame          = "startGame"
	EventWaiting            = "waiting"
	EventJoinRoomError      = "joinRoomError"
	EventGameStarted        = "gameStarted"
	EventPlayerDisconnected = "singlePlayerDisconnected"
	EventGameFinished       = "gamefinished"
)

type StartGamePayload struct {
	Players []Player    `json:"players"`
	Deck    []deck.Card `json:"deck"`
}

type WaitingPayload struct {
	PlayersCount int `json:"playersCount"`
	NumOfPlayers int `json:"numOfPlayers"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type DisconnectedPayload struct {
	Room *Room `json:"room"`
}

type FinishedPayload struct {
	PlayerID string `json:"playerID"`
}
