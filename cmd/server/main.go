package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"entre-nous/internal/config"
	"entre-nous/internal/db"
	"entre-nous/internal/game"
	"entre-nous/internal/server"
	"entre-nous/internal/store"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var recordStore game.Store
	if os.Getenv("DATABASE_URL") != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		recordStore = store.NewPostgres(conn)
	} else {
		log.Printf("DATABASE_URL not set, using in-memory store")
		recordStore = store.NewMemory()
	}

	bookmarks := game.NewFileBookmarks(cfg.BookmarksFile, cfg.BookmarkLimit)
	dir := game.NewDirectory(recordStore, bookmarks, cfg.RoomCodeLength, cfg.RoomCodeAttempts, logger)

	srv := server.New(recordStore, dir, cfg)
	addr := cfg.ListenAddr
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Printf("entre-nous server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
