package history

import (
	"context"
	"os"
	"testing"
	"time"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		database.conn.Exec("DELETE FROM games")
		database.Close()
	})
	return database
}

func TestRecordGame(t *testing.T) {
	database := getTestDB(t)

	start := time.Now().Add(-5 * time.Minute).UnixMilli()
	end := time.Now().UnixMilli()
	if err := database.RecordGame(context.Background(), "R1", "guest", start, end, 3); err != nil {
		t.Fatalf("RecordGame() error: %v", err)
	}

	var count int
	err := database.conn.QueryRow(`SELECT COUNT(*) FROM games WHERE room_id = $1`, "R1").Scan(&count)
	if err != nil {
		t.Fatalf("querying games: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
