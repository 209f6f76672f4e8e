package game

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert hits a uniqueness constraint.
	ErrDuplicate = errors.New("record already exists")
)

// RoomUpdate is a partial write against the shared room row. Nil fields are
// left untouched; a pointer to the zero value clears the column. Callers only
// ever set the fields they own for the transition they are performing.
type RoomUpdate struct {
	Player2Name      *string
	Player1Connected *bool
	Player2Connected *bool
	Status           *string
	CurrentLevel     *int
	CurrentQuestion  *string
	CurrentEvent     *string
	EventPlayerName  *string
}

func StringPtr(s string) *string { return &s }
func BoolPtr(b bool) *bool       { return &b }
func IntPtr(n int) *int          { return &n }

// Store is the narrow record-store surface the game logic is written against.
// Change subscriptions are best-effort push; callers layer their own polling
// on top and deduplicate by row id, so a store whose feed drops events is
// still usable.
type Store interface {
	CreateRoom(ctx context.Context, room *Room) error
	RoomByID(ctx context.Context, id string) (*Room, error)
	RoomByCode(ctx context.Context, code string) (*Room, error)
	RoomsByIDs(ctx context.Context, ids []string) ([]Room, error)
	UpdateRoom(ctx context.Context, id string, update RoomUpdate) (*Room, error)

	InsertAnswer(ctx context.Context, answer *Answer) error
	AnswersFor(ctx context.Context, roomID, questionID string) ([]Answer, error)
	AnswersForRoom(ctx context.Context, roomID string) ([]Answer, error)

	UpsertEventResponse(ctx context.Context, response *EventResponse) error
	EventResponsesFor(ctx context.Context, roomID, eventID string) ([]EventResponse, error)

	Questions(ctx context.Context) ([]Question, error)
	Events(ctx context.Context) ([]Event, error)

	SubscribeRoom(roomID string, fn func(Room)) (unsubscribe func())
	SubscribeAnswers(roomID string, fn func(Answer)) (unsubscribe func())
	SubscribeEventResponses(roomID string, fn func(EventResponse)) (unsubscribe func())
}
