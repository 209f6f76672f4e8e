package game_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"entre-nous/internal/game"
	"entre-nous/internal/store"
)

func newTestDirectory(t *testing.T) (*game.Directory, *game.FileBookmarks, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	bookmarks := game.NewFileBookmarks(filepath.Join(t.TempDir(), "bookmarks.json"), 20)
	dir := game.NewDirectory(mem, bookmarks, 6, 5, nil)
	return dir, bookmarks, mem
}

func TestCreateRoom(t *testing.T) {
	dir, bookmarks, _ := newTestDirectory(t)
	room, err := dir.CreateRoom(context.Background(), "Alex", "our room")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if room.Status != game.StatusWaiting {
		t.Fatalf("expected waiting status, got %s", room.Status)
	}
	if !room.Player1Connected || room.Player1Name != "Alex" {
		t.Fatalf("player one not set up: %+v", room)
	}
	if room.Player2Name != "" {
		t.Fatalf("player two must be empty, got %q", room.Player2Name)
	}
	if len(room.RoomCode) != 6 {
		t.Fatalf("expected 6-char code, got %q", room.RoomCode)
	}
	entries := bookmarks.List()
	if len(entries) != 1 || entries[0].RoomID != room.ID {
		t.Fatalf("expected a bookmark for the new room, got %+v", entries)
	}
}

func TestJoinRoom(t *testing.T) {
	dir, _, _ := newTestDirectory(t)
	ctx := context.Background()
	room, err := dir.CreateRoom(ctx, "Alex", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := dir.JoinRoom(ctx, room.RoomCode, "Sam")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Player2Name != "Sam" || !joined.Player2Connected {
		t.Fatalf("player two not filled: %+v", joined)
	}
}

func TestJoinRoomCaseInsensitiveCode(t *testing.T) {
	dir, _, _ := newTestDirectory(t)
	ctx := context.Background()
	room, err := dir.CreateRoom(ctx, "Alex", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lower := "  " + strings.ToLower(room.RoomCode) + " "
	if _, err := dir.JoinRoom(ctx, lower, "Sam"); err != nil {
		t.Fatalf("lowercased padded code must still match: %v", err)
	}
}

func TestJoinRoomNotFound(t *testing.T) {
	dir, bookmarks, _ := newTestDirectory(t)
	_, err := dir.JoinRoom(context.Background(), "NOSUCH", "Sam")
	if !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if len(bookmarks.List()) != 0 {
		t.Fatal("failed join must not write a bookmark")
	}
}

func TestJoinRoomFull(t *testing.T) {
	dir, _, _ := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")
	if _, err := dir.JoinRoom(ctx, room.RoomCode, "Sam"); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, err := dir.JoinRoom(ctx, room.RoomCode, "Riley")
	if !errors.Is(err, game.ErrRoomFull) {
		t.Fatalf("expected room full, got %v", err)
	}
}

func TestJoinRoomReconnect(t *testing.T) {
	dir, _, _ := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")
	if _, err := dir.JoinRoom(ctx, room.RoomCode, "Sam"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// The creator joining by code again is a reconnect, not a third player.
	rejoined, err := dir.JoinRoom(ctx, room.RoomCode, "Alex")
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if rejoined.Player2Name != "Sam" {
		t.Fatalf("reconnect must not displace player two: %+v", rejoined)
	}
	// And the same for player two.
	if _, err := dir.JoinRoom(ctx, room.RoomCode, "Sam"); err != nil {
		t.Fatalf("player two reconnect: %v", err)
	}
}

func TestResumeRoomGonePrunesBookmark(t *testing.T) {
	dir, bookmarks, _ := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")

	// Simulate the room disappearing from the store while bookmarked.
	missingID := room.ID + "-gone"
	bookmarks.Save(game.Bookmark{RoomID: missingID, PlayerName: "Alex"})

	_, err := dir.ResumeRoom(ctx, missingID, "Alex")
	if !errors.Is(err, game.ErrRoomGone) {
		t.Fatalf("expected room gone, got %v", err)
	}
	for _, entry := range bookmarks.List() {
		if entry.RoomID == missingID {
			t.Fatal("dead bookmark must be pruned")
		}
	}
}

func TestResumeRoomSetsConnected(t *testing.T) {
	dir, _, mem := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")
	if _, err := dir.JoinRoom(ctx, room.RoomCode, "Sam"); err != nil {
		t.Fatalf("join: %v", err)
	}

	resumed, err := dir.ResumeRoom(ctx, room.ID, "Sam")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed.Player2Connected {
		t.Fatal("resume must reconnect the matching player")
	}
	stored, _ := mem.RoomByID(ctx, room.ID)
	if !stored.Player2Connected {
		t.Fatal("connected flag must persist")
	}
}

func TestResumeRoomRejectsStranger(t *testing.T) {
	dir, _, mem := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")

	// A third identity resuming by room id must not claim the empty seat
	// or flip anyone's connection flag.
	_, err := dir.ResumeRoom(ctx, room.ID, "Riley")
	if !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("expected not-found for a stranger, got %v", err)
	}
	stored, _ := mem.RoomByID(ctx, room.ID)
	if stored.Player2Connected || stored.Player2Name != "" {
		t.Fatalf("stranger must leave the room untouched: %+v", stored)
	}

	// Same for an empty name against the empty player-two slot.
	if _, err := dir.ResumeRoom(ctx, room.ID, ""); !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("expected not-found for an empty name, got %v", err)
	}
}

func TestMyRoomsPrunesDeadBookmarks(t *testing.T) {
	dir, bookmarks, _ := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")
	bookmarks.Save(game.Bookmark{RoomID: "long-gone", PlayerName: "Alex"})

	rooms, err := dir.MyRooms(ctx)
	if err != nil {
		t.Fatalf("my rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != room.ID {
		t.Fatalf("expected only the live room, got %+v", rooms)
	}
	for _, entry := range bookmarks.List() {
		if entry.RoomID == "long-gone" {
			t.Fatal("dead bookmark must be pruned")
		}
	}
}

func TestLeaveRoomRemovesBookmarkOnly(t *testing.T) {
	dir, bookmarks, mem := newTestDirectory(t)
	ctx := context.Background()
	room, _ := dir.CreateRoom(ctx, "Alex", "")

	dir.LeaveRoom(room.ID)
	if len(bookmarks.List()) != 0 {
		t.Fatal("bookmark must be removed")
	}
	stored, err := mem.RoomByID(ctx, room.ID)
	if err != nil {
		t.Fatalf("room must survive leaving: %v", err)
	}
	if !stored.Player1Connected {
		t.Fatal("leaving must not flip connection flags")
	}
}

func TestBookmarksCapAndOrder(t *testing.T) {
	bookmarks := game.NewFileBookmarks(filepath.Join(t.TempDir(), "bookmarks.json"), 3)
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		bookmarks.Save(game.Bookmark{RoomID: id, PlayerName: "Alex"})
	}
	entries := bookmarks.List()
	if len(entries) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(entries))
	}
	if entries[0].RoomID != "r4" {
		t.Fatalf("expected most recent first, got %s", entries[0].RoomID)
	}
	for _, entry := range entries {
		if entry.RoomID == "r1" {
			t.Fatal("oldest entry must be evicted")
		}
	}
}
