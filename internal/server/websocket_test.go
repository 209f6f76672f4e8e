package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"entre-nous/internal/game"

	"github.com/gorilla/websocket"
)

func dialRoom(t *testing.T, serverURL, roomID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/rooms/" + roomID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return decoded
}

func TestWebsocketSnapshotAndUpdates(t *testing.T) {
	srv, mem := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	conn := dialRoom(t, srv.URL, roomID)

	initial := readMessage(t, conn)
	if initial["type"] != "room" {
		t.Fatalf("expected an initial room snapshot, got %v", initial)
	}
	snap := initial["room"].(map[string]any)
	if snap["id"] != roomID || snap["status"] != game.StatusWaiting {
		t.Fatalf("unexpected snapshot: %v", snap)
	}

	if _, err := mem.UpdateRoom(t.Context(), roomID, game.RoomUpdate{
		Status:          game.StringPtr(game.StatusPlaying),
		CurrentQuestion: game.StringPtr("q1"),
	}); err != nil {
		t.Fatalf("update room: %v", err)
	}
	update := readMessage(t, conn)
	if update["type"] != "room" {
		t.Fatalf("expected a room update, got %v", update)
	}
	updated := update["room"].(map[string]any)
	if updated["status"] != game.StatusPlaying || updated["current_question_id"] != "q1" {
		t.Fatalf("update not reflected: %v", updated)
	}

	answer := game.Answer{RoomID: roomID, QuestionID: "q1", PlayerName: "Alex", Answer: "hi"}
	if err := mem.InsertAnswer(t.Context(), &answer); err != nil {
		t.Fatalf("insert answer: %v", err)
	}
	pushed := readMessage(t, conn)
	if pushed["type"] != "answer" {
		t.Fatalf("expected an answer push, got %v", pushed)
	}
	row := pushed["answer"].(map[string]any)
	if row["player_name"] != "Alex" || row["question_id"] != "q1" {
		t.Fatalf("unexpected answer payload: %v", row)
	}
}

// Two players acting at once fire store notifications from different
// goroutines. Every frame must still arrive intact on the one socket.
func TestWebsocketConcurrentWrites(t *testing.T) {
	srv, mem := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	conn := dialRoom(t, srv.URL, roomID)
	readMessage(t, conn) // initial snapshot

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := mem.UpdateRoom(context.Background(), roomID, game.RoomUpdate{
				CurrentLevel: game.IntPtr(i + 1),
			}); err != nil {
				t.Errorf("update %d: %v", i, err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			answer := game.Answer{
				RoomID:     roomID,
				QuestionID: fmt.Sprintf("q%d", i),
				PlayerName: "Alex",
				Answer:     "hi",
			}
			if err := mem.InsertAnswer(context.Background(), &answer); err != nil {
				t.Errorf("insert %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2*rounds; i++ {
		frame := readMessage(t, conn)
		switch frame["type"] {
		case "room", "answer":
		default:
			t.Fatalf("frame %d corrupted or mistyped: %v", i, frame)
		}
	}
}

func TestWebsocketUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/rooms/missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected the dial to fail for an unknown room")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
