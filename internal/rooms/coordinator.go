package rooms

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"unoroom/internal/deck"
)

// ErrNotFound is returned by Store implementations when no room matches
// the lookup.
var ErrNotFound = errors.New("room not found")

// Store is the durable document store for rooms.
type Store interface {
	FindByID(ctx context.Context, roomID string) (*Room, error)
	FindByConnection(ctx context.Context, connectionID string) (*Room, error)
	Save(ctx context.Context, room *Room) error
	Delete(ctx context.Context, roomID string) error
}

// Notifier delivers events to a single connection or to every member of
// a room's broadcast group.
type Notifier interface {
	Join(roomID, connectionID string)
	Emit(connectionID, event string, data any)
	Broadcast(roomID, event string, data any)
}

// Result is the record posted to the external verification service when
// a game finishes.
type Result struct {
	Method    string `json:"method"`
	RoomID    string `json:"roomID"`
	WinnerID  string `json:"winnerID"`
	TimeStart int64  `json:"timeStart"`
}

// Reporter submits a finished-game result for external verification.
type Reporter interface {
	Report(ctx context.Context, res Result) error
}

// Archiver records finished games for later analysis. Optional.
type Archiver interface {
	RecordGame(ctx context.Context, roomID, winnerID string, startTime, endTime int64, players int) error
}

// JoinRequest is the payload of an inbound joinRoom event.
type JoinRequest struct {
	RoomID       string `json:"roomID"`
	PlayerID     string `json:"playerID"`
	PlayerName   string `json:"playerName"`
	NumOfPlayers int    `json:"numOfPlayers"`
	IsHost       bool   `json:"isHost"`
}

// Coordinator owns the join/disconnect/game-start state machine.
//
// Every read-modify-write of a room document runs under a per-roomID
// mutex, so overlapping events for the same room are serialized within
// the process and cannot clobber each other's writes. Guest joins are
// still evaluated after a configurable delay so near-simultaneous joins
// settle before the roster-completeness check fires.
type Coordinator struct {
	store     Store
	notify    Notifier
	reporter  Reporter
	history   Archiver // nil unless an archive is configured
	joinDelay time.Duration
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCoordinator(store Store, notify Notifier, reporter Reporter, joinDelay time.Duration) *Coordinator {
	return &Coordinator{
		store:     store,
		notify:    notify,
		reporter:  reporter,
		joinDelay: joinDelay,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// SetArchiver enables game-history archiving on finish.
func (c *Coordinator) SetArchiver(a Archiver) {
	c.history = a
}

// lockRoom serializes mutations per roomID. Lock entries live for the
// process lifetime; they are a few dozen bytes per room ever seen.
func (c *Coordinator) lockRoom(roomID string) func() {
	c.mu.Lock()
	l, ok := c.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[roomID] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// HandleJoin processes an inbound joinRoom event for the given
// connection. Host joins run immediately; guest joins are deferred by
// the configured delay and re-validated at fire time.
func (c *Coordinator) HandleJoin(ctx context.Context, connectionID string, req JoinRequest) {
	if req.IsHost {
		c.hostJoin(ctx, connectionID, req)
		return
	}
	c.scheduleGuestJoin(ctx, connectionID, req)
}

func (c *Coordinator) hostJoin(ctx context.Context, connectionID string, req JoinRequest) {
	unlock := c.lockRoom(req.RoomID)
	defer unlock()

	room, err := c.store.FindByID(ctx, req.RoomID)
	switch {
	case errors.Is(err, ErrNotFound):
		room = &Room{
			RoomID:       req.RoomID,
			HostID:       req.PlayerID,
			HostName:     req.PlayerName,
			NumOfPlayers: req.NumOfPlayers,
			Players: []Player{{
				PlayerID:     req.PlayerID,
				PlayerName:   req.PlayerName,
				ConnectionID: connectionID,
				Connected:    true,
			}},
			ShuffledDeck: deck.Shuffled(),
			GameStarted:  false,
			CreatedAt:    c.now(),
		}
		if err := c.store.Save(ctx, room); err != nil {
			log.Printf("[Rooms] saving new room %s: %v\n", req.RoomID, err)
			c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Error joining room. Please try again."})
			return
		}
		c.notify.Join(req.RoomID, connectionID)
		// The fresh room waits silently for guests.

	case err != nil:
		log.Printf("[Rooms] fetching room %s: %v\n", req.RoomID, err)
		c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Error joining room. Please try again."})

	default:
		host := room.FindPlayer(req.PlayerID)
		if host == nil {
			c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Host player not found in the room."})
			return
		}
		host.Connected = true
		host.ConnectionID = connectionID
		room.HostID = req.PlayerID
		room.HostName = req.PlayerName
		room.NumOfPlayers = req.NumOfPlayers
		room.StartTime = c.now().UnixMilli()
		if err := c.store.Save(ctx, room); err != nil {
			log.Printf("[Rooms] saving room %s: %v\n", req.RoomID, err)
			c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Error joining room. Please try again."})
			return
		}
		c.notify.Join(req.RoomID, connectionID)
		// A returning host pushes a fresh start to everyone currently in
		// the room. Roster completeness is not re-checked on this path.
		c.notify.Broadcast(req.RoomID, EventStartGame, StartGamePayload{
			Players: room.Players,
			Deck:    room.ShuffledDeck,
		})
	}
}

// scheduleGuestJoin defers the join so that near-simultaneous guests
// collect before the completeness check. The timer is tied to the
// connection context: if the guest drops before it fires, nothing runs.
func (c *Coordinator) scheduleGuestJoin(ctx context.Context, connectionID string, req JoinRequest) {
	timer := time.NewTimer(c.joinDelay)
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		c.guestJoin(ctx, connectionID, req)
	}()
}

func (c *Coordinator) guestJoin(ctx context.Context, connectionID string, req JoinRequest) {
	unlock := c.lockRoom(req.RoomID)
	defer unlock()

	// Fetch at fire time, not schedule time; the room may have started,
	// filled up, or vanished while the timer ran.
	room, err := c.store.FindByID(ctx, req.RoomID)
	if errors.Is(err, ErrNotFound) {
		c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Room not found"})
		return
	}
	if err != nil {
		log.Printf("[Rooms] fetching room %s: %v\n", req.RoomID, err)
		c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Error joining room. Please try again."})
		return
	}
	if room.GameStarted {
		c.notify.Emit(connectionID, EventGameStarted, ErrorPayload{Message: "Game has already started. You cannot join the room."})
		return
	}

	if p := room.FindPlayer(req.PlayerID); p != nil {
		p.Connected = true
		p.ConnectionID = connectionID
		p.PlayerName = req.PlayerName
	} else {
		room.Players = append(room.Players, Player{
			PlayerID:     req.PlayerID,
			PlayerName:   req.PlayerName,
			ConnectionID: connectionID,
			Connected:    true,
		})
	}
	if err := c.store.Save(ctx, room); err != nil {
		log.Printf("[Rooms] saving room %s: %v\n", req.RoomID, err)
		return
	}
	c.notify.Join(req.RoomID, connectionID)

	playersCount := room.ConnectedCount()
	c.notify.Broadcast(room.RoomID, EventWaiting, WaitingPayload{
		PlayersCount: playersCount,
		NumOfPlayers: room.NumOfPlayers,
	})

	if !room.GameStarted && playersCount == room.NumOfPlayers {
		room.GameStarted = true
		room.StartTime = c.now().UnixMilli()
		if err := c.store.Save(ctx, room); err != nil {
			log.Printf("[Rooms] saving started room %s: %v\n", room.RoomID, err)
			return
		}
		c.notify.Broadcast(room.RoomID, EventStartGame, StartGamePayload{
			Players: room.Players,
			Deck:    room.ShuffledDeck,
		})
	}
}

// HandleDisconnect marks the player holding the dropped connection as
// disconnected. The transport only knows which connection died, so the
// room is found by reverse lookup. The roster slot is kept for rejoin.
func (c *Coordinator) HandleDisconnect(ctx context.Context, connectionID string) {
	room, err := c.store.FindByConnection(ctx, connectionID)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("[Rooms] looking up connection %s: %v\n", connectionID, err)
		return
	}

	unlock := c.lockRoom(room.RoomID)
	defer unlock()

	// Re-fetch under the lock; the reverse lookup raced other events.
	room, err = c.store.FindByID(ctx, room.RoomID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Rooms] fetching room: %v\n", err)
		}
		return
	}
	player := room.FindByConnection(connectionID)
	if player == nil {
		return
	}
	player.Connected = false
	if err := c.store.Save(ctx, room); err != nil {
		log.Printf("[Rooms] saving room %s: %v\n", room.RoomID, err)
		return
	}
	c.notify.Broadcast(room.RoomID, EventPlayerDisconnected, DisconnectedPayload{Room: room})
}

// HandleFinish reports the declared winner to the verification service
// and, only on a successful acknowledgment, notifies the room and
// deletes it. On reporter failure the room is left untouched so a later
// finish attempt can still succeed.
func (c *Coordinator) HandleFinish(ctx context.Context, connectionID, roomID, playerID string) {
	unlock := c.lockRoom(roomID)
	defer unlock()

	room, err := c.store.FindByID(ctx, roomID)
	if errors.Is(err, ErrNotFound) {
		c.notify.Emit(connectionID, EventJoinRoomError, ErrorPayload{Message: "Room not found"})
		return
	}
	if err != nil {
		log.Printf("[Rooms] fetching room %s: %v\n", roomID, err)
		return
	}

	res := Result{
		Method:    "win",
		RoomID:    roomID,
		WinnerID:  playerID,
		TimeStart: room.StartTime,
	}
	if err := c.reporter.Report(ctx, res); err != nil {
		log.Printf("[Rooms] sending game result for %s: %v\n", roomID, err)
		return
	}

	c.notify.Broadcast(roomID, EventGameFinished, FinishedPayload{PlayerID: playerID})
	if err := c.store.Delete(ctx, roomID); err != nil {
		log.Printf("[Rooms] deleting room %s: %v\n", roomID, err)
	}

	if c.history != nil {
		endTime := c.now().UnixMilli()
		if err := c.history.RecordGame(ctx, roomID, playerID, room.StartTime, endTime, len(room.Players)); err != nil {
			log.Printf("[Rooms] archiving game %s: %v\n", roomID, err)
		}
	}
}
