package server

import (
	"net/http"

	"entre-nous/internal/config"
	"entre-nous/internal/game"
)

// Server is the delivery surface: room directory, ledgers and a per-room
// change feed over JSON and websockets. No turn decision is made here; the
// clients derive everything from the rows this server hands them.
type Server struct {
	store game.Store
	dir   *game.Directory
	ws    *wsHub
	cfg   config.Config
}

func New(store game.Store, dir *game.Directory, cfg config.Config) *Server {
	return &Server{
		store: store,
		dir:   dir,
		ws:    newWSHub(),
		cfg:   cfg,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms", s.handleMyRooms)
	mux.HandleFunc("POST /api/rooms/join", s.handleJoinRoom)
	mux.HandleFunc("GET /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("POST /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("PATCH /api/rooms/", s.handleRoomSubroutes)
	mux.HandleFunc("GET /api/catalog/questions", s.handleQuestionCatalog)
	mux.HandleFunc("GET /api/catalog/events", s.handleEventCatalog)
	mux.HandleFunc("GET /ws/rooms/", s.handleRoomWebsocket)
	return mux
}
