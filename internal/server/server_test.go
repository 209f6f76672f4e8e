package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"entre-nous/internal/config"
	"entre-nous/internal/game"
	"entre-nous/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mem.SeedCatalogs(
		[]game.Question{
			{ID: "q1", Text: "First thing you noticed?", Level: 1, SortOrder: 1},
			{ID: "q2", Text: "A small habit you love?", Level: 1, SortOrder: 2},
		},
		[]game.Event{
			{ID: "e1", Type: game.EventMessage, Title: "Sweet nothings", Level: 1, RequiresBoth: true, SortOrder: 1},
		},
	)
	bookmarks := game.NewFileBookmarks(filepath.Join(t.TempDir(), "bookmarks.json"), 10)
	dir := game.NewDirectory(mem, bookmarks, 6, 5, nil)
	srv := httptest.NewServer(New(mem, dir, config.Default()).Handler())
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func createTestRoom(t *testing.T, srv *httptest.Server) map[string]any {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/rooms", map[string]any{
		"player_name": "Alex",
		"room_name":   "Date night",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room status %d: %v", resp.StatusCode, body)
	}
	room, ok := body["room"].(map[string]any)
	if !ok {
		t.Fatalf("snapshot missing room: %v", body)
	}
	return room
}

func TestCreateRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)

	code, _ := room["room_code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected a 6-char room code, got %q", code)
	}
	if room["player1_name"] != "Alex" || room["status"] != game.StatusWaiting {
		t.Fatalf("unexpected room: %v", room)
	}
}

func TestCreateRoomRejectsBadNames(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, name := range []string{"", "   ", strings.Repeat("x", 40)} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/rooms", map[string]any{"player_name": name})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("name %q: expected 400, got %d", name, resp.StatusCode)
		}
	}
}

func TestJoinRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)
	code := room["room_code"].(string)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/join", map[string]any{
		"code":        "  " + strings.ToLower(code) + " ",
		"player_name": "Sam",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status %d: %v", resp.StatusCode, body)
	}
	joined := body["room"].(map[string]any)
	if joined["player2_name"] != "Sam" || joined["player2_connected"] != true {
		t.Fatalf("join did not seat player 2: %v", joined)
	}
}

func TestJoinRoomUnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/join", map[string]any{
		"code":        "ZZZZZZ",
		"player_name": "Sam",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestJoinRoomFull(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)
	code := room["room_code"].(string)

	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/join", map[string]any{"code": code, "player_name": "Sam"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("first join: %d", resp.StatusCode)
	}
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/join", map[string]any{"code": code, "player_name": "Riley"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a full room, got %d", resp.StatusCode)
	}
}

func TestPatchRoomAdvancesSharedRow(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	resp, body := doJSON(t, http.MethodPatch, srv.URL+"/api/rooms/"+roomID, map[string]any{
		"status":              game.StatusPlaying,
		"current_level":       1,
		"current_question_id": "q1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d: %v", resp.StatusCode, body)
	}
	updated := body["room"].(map[string]any)
	if updated["status"] != game.StatusPlaying || updated["current_question_id"] != "q1" {
		t.Fatalf("patch not applied: %v", updated)
	}

	// Omitted fields must survive a later partial patch.
	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/api/rooms/"+roomID, map[string]any{
		"current_event_id": "e1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second patch status %d", resp.StatusCode)
	}
	updated = body["room"].(map[string]any)
	if updated["current_question_id"] != "q1" || updated["current_event_id"] != "e1" {
		t.Fatalf("partial patch clobbered fields: %v", updated)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/rooms/does-not-exist", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSubmitAnswerAndDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	if resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/rooms/"+roomID, map[string]any{
		"status":              game.StatusPlaying,
		"current_question_id": "q1",
	}); resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: %d", resp.StatusCode)
	}

	// question_id omitted: the server fills in the room's current question.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/"+roomID+"/answers", map[string]any{
		"player_name": "Alex",
		"answer":      "your laugh",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("answer status %d: %v", resp.StatusCode, body)
	}
	if body["question_id"] != "q1" {
		t.Fatalf("expected question_id q1, got %v", body["question_id"])
	}

	// Double-submit comes back 200 with no second row.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/rooms/"+roomID+"/answers", map[string]any{
		"player_name": "Alex",
		"question_id": "q1",
		"answer":      "changed my mind",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate answer status %d: %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/rooms/"+roomID+"/answers?question_id=q1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list answers: %d", resp.StatusCode)
	}
	answers := body["answers"].([]any)
	if len(answers) != 1 {
		t.Fatalf("expected one answer row, got %d", len(answers))
	}
	first := answers[0].(map[string]any)
	if first["answer"] != "your laugh" {
		t.Fatalf("first write must win, got %v", first["answer"])
	}
}

func TestSubmitAnswerRequiresActiveQuestion(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/"+roomID+"/answers", map[string]any{
		"player_name": "Alex",
		"answer":      "too early",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 with no active question, got %d", resp.StatusCode)
	}
}

func TestSubmitAndListResponses(t *testing.T) {
	srv, _ := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/rooms/"+roomID+"/responses", map[string]any{
		"player_name": "Alex",
		"event_id":    "e1",
		"response":    "draft",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("response status %d: %v", resp.StatusCode, body)
	}

	// Second submit for the same event updates the row.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/rooms/"+roomID+"/responses", map[string]any{
		"player_name": "Alex",
		"event_id":    "e1",
		"response":    "final",
		"completed":   true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert status %d", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/rooms/"+roomID+"/responses?event_id=e1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list responses: %d", resp.StatusCode)
	}
	responses := body["responses"].([]any)
	if len(responses) != 1 {
		t.Fatalf("expected one response row, got %d", len(responses))
	}
	row := responses[0].(map[string]any)
	if row["response"] != "final" || row["completed"] != true {
		t.Fatalf("upsert lost the update: %v", row)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	room := createTestRoom(t, srv)
	roomID := room["id"].(string)

	seed := func(question, player, text string, skipped bool) {
		t.Helper()
		answer := game.Answer{RoomID: roomID, QuestionID: question, PlayerName: player, Answer: text, Skipped: skipped}
		if err := mem.InsertAnswer(t.Context(), &answer); err != nil {
			t.Fatalf("seed answer: %v", err)
		}
	}
	seed("q1", "Alex", "your laugh", false)
	seed("q1", "Sam", "your patience", false)
	seed("q2", "Alex", "", true)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/rooms/"+roomID+"/history?player=Alex", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status %d: %v", resp.StatusCode, body)
	}
	entries := body["history"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	first := entries[0].(map[string]any)
	if first["player_answer"] != "your laugh" || first["partner_answer"] != "your patience" {
		t.Fatalf("history mixed up perspectives: %v", first)
	}
	second := entries[1].(map[string]any)
	if second["player_skipped"] != true {
		t.Fatalf("skip must be flagged: %v", second)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/rooms/"+roomID+"/history", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without player query, got %d", resp.StatusCode)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/catalog/questions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions status %d", resp.StatusCode)
	}
	questions := body["questions"].([]any)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].(map[string]any)["id"] != "q1" {
		t.Fatalf("catalog order wrong: %v", questions)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/catalog/events", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status %d", resp.StatusCode)
	}
	events := body["events"].([]any)
	if len(events) != 1 || events[0].(map[string]any)["type"] != string(game.EventMessage) {
		t.Fatalf("unexpected events: %v", events)
	}
}
