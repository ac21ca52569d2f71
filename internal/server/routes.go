package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"unoroom/internal/config"
	"unoroom/internal/history"
	"unoroom/internal/report"
	"unoroom/internal/rooms"
	"unoroom/internal/store"
	"unoroom/internal/wshub"
)

func Run() error {
	cfg := config.Load()

	var roomStore rooms.Store
	if cfg.MongoURI != "" {
		mongoStore, err := store.ConnectMongo(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("connecting room store: %w", err)
		}
		roomStore = mongoStore
	} else {
		log.Println("[Store] MONGO_URI not set, using in-memory room store")
		roomStore = store.NewMemory()
	}

	hub := wshub.NewHub()
	reporter := report.NewClient(cfg.ReportURL, cfg.ReportSign)
	coord := rooms.NewCoordinator(roomStore, hub, reporter, cfg.JoinDelay)

	// Optional game-history archive
	if cfg.DatabaseURL != "" {
		archive, err := history.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[History] Failed to connect: %v (running without archive)\n", err)
		} else {
			if err := archive.Migrate(); err != nil {
				log.Printf("[History] Migration failed: %v\n", err)
			}
			coord.SetArchiver(archive)
			log.Println("[History] Archive connected and migrations applied")
		}
	} else {
		log.Println("[History] DATABASE_URL not set, running without archive")
	}

	srv := &Server{
		Store: roomStore,
		Hub:   hub,
		Coord: coord,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/room/{roomID}/players", srv.handleRoomPlayers)
	mux.HandleFunc("GET /api/room/{roomID}/deck", srv.handleRoomDeck)
	mux.HandleFunc("/ws", srv.handleWS)
	mux.HandleFunc("GET /health", srv.handleHealth)

	addr := "0.0.0.0:" + cfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, mux)
}
