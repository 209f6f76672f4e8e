package server

import "strings"

// parseRoomPath splits /api/rooms/{id} or /api/rooms/{id}/{action}.
func parseRoomPath(path string) (string, string, bool) {
	const prefix = "/api/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", "", false
	}
	roomID := parts[0]
	if len(parts) == 1 {
		return roomID, "", true
	}
	if len(parts) == 2 {
		return roomID, parts[1], true
	}
	return "", "", false
}

func parseWebsocketPath(path string) (string, bool) {
	const prefix = "/ws/rooms/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
