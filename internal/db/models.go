package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID               string    `gorm:"primaryKey;size:36"`
	RoomCode         string    `gorm:"size:12;uniqueIndex;not null"`
	RoomName         *string   `gorm:"size:64"`
	Player1Name      string    `gorm:"size:64;not null"`
	Player2Name      *string   `gorm:"size:64"`
	Player1Connected bool      `gorm:"not null;default:false"`
	Player2Connected bool      `gorm:"not null;default:false"`
	Status           string    `gorm:"size:16;not null"`
	CurrentLevel     *int      ``
	CurrentQuestion  *string   `gorm:"size:36;column:current_question_id"`
	CurrentEvent     *string   `gorm:"size:36;column:current_event_id"`
	EventPlayerName  *string   `gorm:"size:64"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type Answer struct {
	ID         string    `gorm:"primaryKey;size:36"`
	RoomID     string    `gorm:"size:36;index;not null;uniqueIndex:idx_answers_room_question_player"`
	QuestionID string    `gorm:"size:36;not null;uniqueIndex:idx_answers_room_question_player"`
	PlayerName string    `gorm:"size:64;not null;uniqueIndex:idx_answers_room_question_player"`
	Answer     *string   `gorm:"size:2000"`
	Skipped    bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
}

type EventResponse struct {
	ID         string    `gorm:"primaryKey;size:36"`
	RoomID     string    `gorm:"size:36;index;not null;uniqueIndex:idx_responses_room_event_player"`
	EventID    string    `gorm:"size:36;not null;uniqueIndex:idx_responses_room_event_player"`
	PlayerName string    `gorm:"size:64;not null;uniqueIndex:idx_responses_room_event_player"`
	Response   *string   `gorm:"size:2000"`
	Completed  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type Question struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Question    string         `gorm:"size:500;not null"`
	Level       int            `gorm:"not null;index:idx_questions_level_order"`
	SortOrder   int            `gorm:"not null;index:idx_questions_level_order"`
	Suggestions datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

type GameEvent struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Type         string    `gorm:"size:16;not null"`
	Title        string    `gorm:"size:200;not null"`
	Description  string    `gorm:"size:1000;not null"`
	Level        int       `gorm:"not null;index:idx_game_events_level_order"`
	RequiresBoth bool      `gorm:"not null;default:true"`
	IsPrivate    bool      `gorm:"not null;default:false"`
	SortOrder    int       `gorm:"not null;index:idx_game_events_level_order"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
