package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrRoomNotFound means the typed code matches no room.
	ErrRoomNotFound = errors.New("room not found, check the code")
	// ErrRoomFull means two other players already own the room's name slots.
	ErrRoomFull = errors.New("room already has two players")
	// ErrRoomGone means a bookmarked room no longer exists in the store.
	ErrRoomGone = errors.New("room no longer exists")
	// ErrCodeCollision means code generation kept hitting taken codes.
	ErrCodeCollision = errors.New("could not allocate a unique room code")
)

// Directory creates, joins and resumes rooms, and keeps the device-local
// bookmark list in step with what the store still knows about.
type Directory struct {
	store        Store
	bookmarks    Bookmarks
	codeLength   int
	codeAttempts int
	log          *slog.Logger
}

func NewDirectory(store Store, bookmarks Bookmarks, codeLength, codeAttempts int, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	if codeLength <= 0 {
		codeLength = 6
	}
	if codeAttempts <= 0 {
		codeAttempts = 5
	}
	return &Directory{
		store:        store,
		bookmarks:    bookmarks,
		codeLength:   codeLength,
		codeAttempts: codeAttempts,
		log:          log,
	}
}

// CreateRoom allocates a collision-checked code and inserts a waiting room
// with the caller as player one.
func (d *Directory) CreateRoom(ctx context.Context, playerName, roomName string) (*Room, error) {
	code, err := d.allocateCode(ctx)
	if err != nil {
		return nil, err
	}
	room := &Room{
		RoomCode:         code,
		RoomName:         roomName,
		Player1Name:      playerName,
		Player1Connected: true,
		Status:           StatusWaiting,
	}
	if err := d.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}
	d.log.Info("room created", "room_id", room.ID, "room_code", room.RoomCode)
	d.bookmark(room, playerName)
	return room, nil
}

// JoinRoom looks the room up by code. A caller whose name matches player one
// is treated as a reconnect, not a second join.
func (d *Directory) JoinRoom(ctx context.Context, code, playerName string) (*Room, error) {
	room, err := d.store.RoomByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("looking up room: %w", err)
	}
	if room.Player2Name != "" && room.Player2Name != playerName {
		if room.Player1Name != playerName {
			return nil, ErrRoomFull
		}
	}

	var update RoomUpdate
	switch playerName {
	case room.Player1Name:
		update.Player1Connected = BoolPtr(true)
	case room.Player2Name:
		update.Player2Connected = BoolPtr(true)
	default:
		update.Player2Name = StringPtr(playerName)
		update.Player2Connected = BoolPtr(true)
	}
	updated, err := d.store.UpdateRoom(ctx, room.ID, update)
	if err != nil {
		return nil, fmt.Errorf("joining room: %w", err)
	}
	d.log.Info("room joined", "room_id", updated.ID, "player", playerName)
	d.bookmark(updated, playerName)
	return updated, nil
}

// ResumeRoom re-fetches a bookmarked room by id, pruning the bookmark when
// the room has been deleted from under it. Only a seated player may resume;
// anyone else gets the same answer as a wrong code.
func (d *Directory) ResumeRoom(ctx context.Context, roomID, playerName string) (*Room, error) {
	room, err := d.store.RoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			d.bookmarks.Remove(roomID)
			return nil, ErrRoomGone
		}
		return nil, fmt.Errorf("looking up room: %w", err)
	}
	if !room.HasPlayer(playerName) {
		return nil, ErrRoomNotFound
	}
	var update RoomUpdate
	if room.Player1Name == playerName {
		update.Player1Connected = BoolPtr(true)
	} else {
		update.Player2Connected = BoolPtr(true)
	}
	updated, err := d.store.UpdateRoom(ctx, room.ID, update)
	if err != nil {
		return nil, fmt.Errorf("resuming room: %w", err)
	}
	d.bookmark(updated, playerName)
	return updated, nil
}

// MyRooms cross-references the bookmark list with live rows, pruning
// bookmarks whose room is gone, and returns the survivors newest first.
func (d *Directory) MyRooms(ctx context.Context) ([]Room, error) {
	entries := d.bookmarks.List()
	if len(entries) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.RoomID)
	}
	rooms, err := d.store.RoomsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	alive := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		alive[room.ID] = struct{}{}
	}
	for _, entry := range entries {
		if _, ok := alive[entry.RoomID]; !ok {
			d.bookmarks.Remove(entry.RoomID)
		}
	}
	return rooms, nil
}

// LeaveRoom drops the bookmark. Connection flags stay as they are: there is
// no disconnect protocol, flags only ever go true.
func (d *Directory) LeaveRoom(roomID string) {
	d.bookmarks.Remove(roomID)
}

func (d *Directory) allocateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < d.codeAttempts; attempt++ {
		code := newRoomCode(d.codeLength)
		_, err := d.store.RoomByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking room code: %w", err)
		}
	}
	return "", ErrCodeCollision
}

func (d *Directory) bookmark(room *Room, playerName string) {
	d.bookmarks.Save(Bookmark{
		RoomID:     room.ID,
		RoomCode:   room.RoomCode,
		PlayerName: playerName,
		RoomName:   room.RoomName,
		LastAccess: time.Now().UTC(),
	})
}
