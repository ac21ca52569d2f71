package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"unoroom/internal/rooms"
)

const opTimeout = 5 * time.Second

// Mongo persists rooms as single documents in a MongoDB collection,
// keyed by roomID.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectMongo dials MongoDB, pings it, and returns a store backed by
// the "rooms" collection of the given database.
func ConnectMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	log.Println("[Store] Connected to MongoDB")
	return &Mongo{
		client:     client,
		collection: client.Database(database).Collection("rooms"),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) FindByID(ctx context.Context, roomID string) (*rooms.Room, error) {
	return m.findOne(ctx, bson.M{"roomID": roomID})
}

// FindByConnection locates the room whose roster contains the given
// transport connection.
func (m *Mongo) FindByConnection(ctx context.Context, connectionID string) (*rooms.Room, error) {
	return m.findOne(ctx, bson.M{"players.connectionID": connectionID})
}

func (m *Mongo) findOne(ctx context.Context, filter bson.M) (*rooms.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var room rooms.Room
	err := m.collection.FindOne(ctx, filter).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, rooms.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding room: %w", err)
	}
	return &room, nil
}

// Save upserts the full room document.
func (m *Mongo) Save(ctx context.Context, room *rooms.Room) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"roomID": room.RoomID}
	_, err := m.collection.ReplaceOne(ctx, filter, room, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving room %s: %w", room.RoomID, err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, roomID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := m.collection.DeleteOne(ctx, bson.M{"roomID": roomID})
	if err != nil {
		return fmt.Errorf("deleting room %s: %w", roomID, err)
	}
	if res.DeletedCount == 0 {
		return rooms.ErrNotFound
	}
	return nil
}
