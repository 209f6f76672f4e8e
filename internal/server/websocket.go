package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"entre-nous/internal/game"

	"github.com/gorilla/websocket"
)

// wsClient wraps one websocket connection. The store's notifier invokes
// subscription callbacks from whichever goroutine performed the write, so
// two players acting at once would otherwise write the same connection
// concurrently; the mutex serializes all frames through one writer at a
// time, which is the contract gorilla/websocket requires.
type wsClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (c *wsClient) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteMessage(websocket.TextMessage, data)
}

// wsHub tracks websocket connections per room. The feed is a convenience
// push on top of the clients' own polling; a dropped connection never loses
// game state, the next poll repairs it.
type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*wsClient]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*wsClient]struct{}),
	}
}

func (h *wsHub) Add(roomID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[roomID] = group
	}
	group[client] = struct{}{}
}

func (h *wsHub) Remove(roomID string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[roomID]
	if group == nil {
		return
	}
	delete(group, client)
	_ = client.conn.Close()
	if len(group) == 0 {
		delete(h.groups, roomID)
	}
}

// handleRoomWebsocket bridges the store's change subscriptions onto a
// websocket: room-row updates, answer inserts and response upserts for one
// room, each tagged with a type so clients can route them to the right
// ledger. The initial room snapshot is pushed on connect so a rejoining
// client lands on current state before the first poll.
func (s *Server) handleRoomWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseWebsocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	room, err := s.store.RoomByID(r.Context(), roomID)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected room_id=%s remote=%s", roomID, r.RemoteAddr)
	client := &wsClient{conn: conn}
	s.ws.Add(roomID, client)
	client.send(s.roomSnapshot(*room))

	// Per-connection subscriptions: each socket gets its own feed, so two
	// sockets on one room do not double-send to each other.
	unsubRoom := s.store.SubscribeRoom(roomID, func(updated game.Room) {
		client.send(s.roomSnapshot(updated))
	})
	unsubAnswers := s.store.SubscribeAnswers(roomID, func(a game.Answer) {
		client.send(map[string]any{
			"type":   "answer",
			"answer": answerPayload(a),
		})
	})
	unsubResponses := s.store.SubscribeEventResponses(roomID, func(resp game.EventResponse) {
		client.send(map[string]any{
			"type":     "event_response",
			"response": responsePayload(resp),
		})
	})

	go func() {
		defer func() {
			unsubRoom()
			unsubAnswers()
			unsubResponses()
			s.ws.Remove(roomID, client)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Printf("ws disconnected room_id=%s error=%v", roomID, err)
				return
			}
		}
	}()
}
