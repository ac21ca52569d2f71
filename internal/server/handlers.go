package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"unoroom/internal/rooms"
	"unoroom/internal/wshub"
)

type Server struct {
	Store rooms.Store
	Hub   *wshub.Hub
	Coord *rooms.Coordinator
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handle] encoding response: %v\n", err)
	}
}

func (s *Server) handleRoomPlayers(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	room, err := s.Store.FindByID(r.Context(), roomID)
	if errors.Is(err, rooms.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}
	if err != nil {
		log.Printf("[Handle:RoomPlayers] %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleRoomDeck(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	room, err := s.Store.FindByID(r.Context(), roomID)
	if errors.Is(err, rooms.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Room not found"})
		return
	}
	if err != nil {
		log.Printf("[Handle:RoomDeck] %v\n", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, room.ShuffledDeck)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWS upgrades the connection and runs its event loop. Each
// connection gets a uuid handle; the coordinator correlates roster
// entries to it for disconnect handling.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("[WS] accept: %v\n", err)
		return
	}

	connectionID := uuid.New().String()
	client := wshub.NewClient(connectionID, conn)
	s.Hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	go client.WritePump(ctx)

	defer func() {
		// Cancel first so any pending delayed joins for this connection
		// become no-ops, then record the disconnect against the roster.
		cancel()
		s.Hub.Unregister(connectionID)
		s.Coord.HandleDisconnect(context.Background(), connectionID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.dispatch(ctx, connectionID, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, connectionID string, msg wshub.ClientMessage) {
	switch msg.Event {
	case "joinRoom":
		var req rooms.JoinRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			s.Hub.Emit(connectionID, rooms.EventJoinRoomError, rooms.ErrorPayload{Message: "Error joining room. Please try again."})
			return
		}
		s.Coord.HandleJoin(ctx, connectionID, req)

	case "movePlayed":
		s.relay("movePlayedBy", msg.Data)
	case "colorSelected":
		s.relay("colorSelectedBy", msg.Data)
	case "drawFourSelected":
		s.relay("drawFourSelectedBy", msg.Data)

	case "gamefinished":
		var fin struct {
			RoomID   string `json:"roomID"`
			PlayerID string `json:"playerID"`
		}
		if err := json.Unmarshal(msg.Data, &fin); err != nil {
			return
		}
		s.Coord.HandleFinish(ctx, connectionID, fin.RoomID, fin.PlayerID)
	}
}

// relay fans a gameplay event out to its room unchanged. These events
// carry no state mutation; the payload passes through as-is.
func (s *Server) relay(event string, data json.RawMessage) {
	var payload struct {
		RoomID string `json:"roomID"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}
	s.Hub.Broadcast(payload.RoomID, event, data)
}
