package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"entre-nous/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeDirectoryError maps directory failures onto the user-facing messages
// the flows surface; anything unrecognized degrades to a generic 500.
func writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, game.ErrRoomGone):
		writeError(w, http.StatusGone, "room no longer exists")
	case errors.Is(err, game.ErrRoomFull):
		writeError(w, http.StatusConflict, "room full")
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}
