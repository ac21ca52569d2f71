package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB archives finished games to PostgreSQL. The archive is optional;
// the coordinator runs without it.
type DB struct {
	conn *sql.DB
}

func Connect(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Println("[History] Connected to PostgreSQL")
	return &DB{conn: conn}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := d.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Printf("[History] Applied migration: %s\n", entry.Name())
	}
	return nil
}

// RecordGame stores one finished game. Start and end times arrive as
// epoch milliseconds, matching the room document.
func (d *DB) RecordGame(ctx context.Context, roomID, winnerID string, startTime, endTime int64, players int) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO games (room_id, winner_id, started_at, ended_at, player_count)
		VALUES ($1, $2, $3, $4, $5)
	`, roomID, winnerID, time.UnixMilli(startTime), time.UnixMilli(endTime), players)
	if err != nil {
		return fmt.Errorf("recording game: %w", err)
	}
	return nil
}
