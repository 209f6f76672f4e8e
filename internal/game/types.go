package game

import "time"

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Room is the shared row both players replicate. It is the only record either
// client writes that the other one reads; everything a client displays is
// re-derived from the latest copy of it plus the two ledgers.
type Room struct {
	ID               string
	RoomCode         string
	RoomName         string
	Player1Name      string
	Player2Name      string
	Player1Connected bool
	Player2Connected bool
	Status           string
	CurrentLevel     int    // 0 until the game starts
	CurrentQuestion  string // question id, "" until the game starts
	CurrentEvent     string // event id, "" when no event is active
	EventPlayerName  string // performer name for solo events, "" otherwise
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r Room) BothConnected() bool {
	return r.Player1Connected && r.Player2Connected
}

func (r Room) HasPlayer(name string) bool {
	return name != "" && (r.Player1Name == name || r.Player2Name == name)
}

// PartnerOf returns the other player's name, or "" if name is not in the room
// or no partner has joined yet.
func (r Room) PartnerOf(name string) string {
	switch name {
	case r.Player1Name:
		return r.Player2Name
	case r.Player2Name:
		return r.Player1Name
	default:
		return ""
	}
}

type Answer struct {
	ID         string
	RoomID     string
	QuestionID string
	PlayerName string
	Answer     string
	Skipped    bool
	CreatedAt  time.Time
}

type EventResponse struct {
	ID         string
	RoomID     string
	EventID    string
	PlayerName string
	Response   string
	Completed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Question struct {
	ID          string
	Text        string
	Level       int
	SortOrder   int
	Suggestions []string
}

type EventType string

const (
	EventMessage    EventType = "message"
	EventPromise    EventType = "promise"
	EventPhoto      EventType = "photo"
	EventSync       EventType = "sync"
	EventGame       EventType = "game"
	EventConfession EventType = "confession"
)

type Event struct {
	ID           string
	Type         EventType
	Title        string
	Description  string
	Level        int
	RequiresBoth bool
	IsPrivate    bool
	SortOrder    int
}

// EventRole classifies a player against the active event. Every client must
// compute this from the shared row alone so both converge on the same screen.
type EventRole int

const (
	RoleNone EventRole = iota
	RoleJoint
	RolePerformer
	RoleObserver
)

func (r Room) RoleFor(ev *Event, playerName string) EventRole {
	if ev == nil || r.CurrentEvent == "" || r.CurrentEvent != ev.ID {
		return RoleNone
	}
	if ev.RequiresBoth {
		return RoleJoint
	}
	if r.EventPlayerName == playerName {
		return RolePerformer
	}
	return RoleObserver
}
