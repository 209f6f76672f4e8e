package store

import (
	"context"
	"encoding/json"
	"errors"

	"entre-nous/internal/db"
	"entre-nous/internal/game"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	pgconnv5 "github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres implements game.Store over GORM. Change notifications are fanned
// out from the writing process; a client in another process still converges
// through its poll loops, which is the contract the ledgers are built on.
type Postgres struct {
	conn   *gorm.DB
	notify *notifier
}

func NewPostgres(conn *gorm.DB) *Postgres {
	return &Postgres{conn: conn, notify: newNotifier()}
}

func (p *Postgres) CreateRoom(ctx context.Context, room *game.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	record := roomToRecord(room)
	if err := p.conn.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicate
		}
		return err
	}
	*room = recordToRoom(record)
	return nil
}

func (p *Postgres) RoomByID(ctx context.Context, id string) (*game.Room, error) {
	var record db.Room
	if err := p.conn.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrNotFound
		}
		return nil, err
	}
	room := recordToRoom(record)
	return &room, nil
}

func (p *Postgres) RoomByCode(ctx context.Context, code string) (*game.Room, error) {
	var record db.Room
	if err := p.conn.WithContext(ctx).First(&record, "room_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, game.ErrNotFound
		}
		return nil, err
	}
	room := recordToRoom(record)
	return &room, nil
}

func (p *Postgres) RoomsByIDs(ctx context.Context, ids []string) ([]game.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []db.Room
	if err := p.conn.WithContext(ctx).
		Where("id IN ?", ids).
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	rooms := make([]game.Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, recordToRoom(record))
	}
	return rooms, nil
}

func (p *Postgres) UpdateRoom(ctx context.Context, id string, update game.RoomUpdate) (*game.Room, error) {
	fields := roomUpdateFields(update)
	if len(fields) > 0 {
		result := p.conn.WithContext(ctx).Model(&db.Room{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, game.ErrNotFound
		}
	}
	room, err := p.RoomByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.notify.publishRoom(*room)
	return room, nil
}

func (p *Postgres) InsertAnswer(ctx context.Context, answer *game.Answer) error {
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	record := db.Answer{
		ID:         answer.ID,
		RoomID:     answer.RoomID,
		QuestionID: answer.QuestionID,
		PlayerName: answer.PlayerName,
		Answer:     optional(answer.Answer),
		Skipped:    answer.Skipped,
	}
	if err := p.conn.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicate
		}
		return err
	}
	answer.CreatedAt = record.CreatedAt
	p.notify.publishAnswer(*answer)
	return nil
}

func (p *Postgres) AnswersFor(ctx context.Context, roomID, questionID string) ([]game.Answer, error) {
	var records []db.Answer
	if err := p.conn.WithContext(ctx).
		Where("room_id = ? AND question_id = ?", roomID, questionID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return answersFromRecords(records), nil
}

func (p *Postgres) AnswersForRoom(ctx context.Context, roomID string) ([]game.Answer, error) {
	var records []db.Answer
	if err := p.conn.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return answersFromRecords(records), nil
}

func (p *Postgres) UpsertEventResponse(ctx context.Context, response *game.EventResponse) error {
	if response.ID == "" {
		response.ID = uuid.NewString()
	}
	record := db.EventResponse{
		ID:         response.ID,
		RoomID:     response.RoomID,
		EventID:    response.EventID,
		PlayerName: response.PlayerName,
		Response:   optional(response.Response),
		Completed:  response.Completed,
	}
	err := p.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "event_id"}, {Name: "player_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "completed", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}
	// Re-read so the caller observes the surviving row id on conflict.
	var stored db.EventResponse
	if err := p.conn.WithContext(ctx).
		First(&stored, "room_id = ? AND event_id = ? AND player_name = ?",
			response.RoomID, response.EventID, response.PlayerName).Error; err != nil {
		return err
	}
	*response = responseFromRecord(stored)
	p.notify.publishResponse(*response)
	return nil
}

func (p *Postgres) EventResponsesFor(ctx context.Context, roomID, eventID string) ([]game.EventResponse, error) {
	var records []db.EventResponse
	if err := p.conn.WithContext(ctx).
		Where("room_id = ? AND event_id = ?", roomID, eventID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	responses := make([]game.EventResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, responseFromRecord(record))
	}
	return responses, nil
}

func (p *Postgres) Questions(ctx context.Context) ([]game.Question, error) {
	var records []db.Question
	if err := p.conn.WithContext(ctx).
		Order("level ASC, sort_order ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	questions := make([]game.Question, 0, len(records))
	for _, record := range records {
		var suggestions []string
		if len(record.Suggestions) > 0 {
			_ = json.Unmarshal(record.Suggestions, &suggestions)
		}
		questions = append(questions, game.Question{
			ID:          record.ID,
			Text:        record.Question,
			Level:       record.Level,
			SortOrder:   record.SortOrder,
			Suggestions: suggestions,
		})
	}
	return questions, nil
}

func (p *Postgres) Events(ctx context.Context) ([]game.Event, error) {
	var records []db.GameEvent
	if err := p.conn.WithContext(ctx).
		Order("level ASC, sort_order ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]game.Event, 0, len(records))
	for _, record := range records {
		events = append(events, game.Event{
			ID:           record.ID,
			Type:         game.EventType(record.Type),
			Title:        record.Title,
			Description:  record.Description,
			Level:        record.Level,
			RequiresBoth: record.RequiresBoth,
			IsPrivate:    record.IsPrivate,
			SortOrder:    record.SortOrder,
		})
	}
	return events, nil
}

func (p *Postgres) SubscribeRoom(roomID string, fn func(game.Room)) func() {
	return p.notify.SubscribeRoom(roomID, fn)
}

func (p *Postgres) SubscribeAnswers(roomID string, fn func(game.Answer)) func() {
	return p.notify.SubscribeAnswers(roomID, fn)
}

func (p *Postgres) SubscribeEventResponses(roomID string, fn func(game.EventResponse)) func() {
	return p.notify.SubscribeEventResponses(roomID, fn)
}

func roomToRecord(room *game.Room) db.Room {
	return db.Room{
		ID:               room.ID,
		RoomCode:         room.RoomCode,
		RoomName:         optional(room.RoomName),
		Player1Name:      room.Player1Name,
		Player2Name:      optional(room.Player2Name),
		Player1Connected: room.Player1Connected,
		Player2Connected: room.Player2Connected,
		Status:           room.Status,
		CurrentLevel:     optionalInt(room.CurrentLevel),
		CurrentQuestion:  optional(room.CurrentQuestion),
		CurrentEvent:     optional(room.CurrentEvent),
		EventPlayerName:  optional(room.EventPlayerName),
	}
}

func recordToRoom(record db.Room) game.Room {
	return game.Room{
		ID:               record.ID,
		RoomCode:         record.RoomCode,
		RoomName:         deref(record.RoomName),
		Player1Name:      record.Player1Name,
		Player2Name:      deref(record.Player2Name),
		Player1Connected: record.Player1Connected,
		Player2Connected: record.Player2Connected,
		Status:           record.Status,
		CurrentLevel:     derefInt(record.CurrentLevel),
		CurrentQuestion:  deref(record.CurrentQuestion),
		CurrentEvent:     deref(record.CurrentEvent),
		EventPlayerName:  deref(record.EventPlayerName),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func answersFromRecords(records []db.Answer) []game.Answer {
	answers := make([]game.Answer, 0, len(records))
	for _, record := range records {
		answers = append(answers, game.Answer{
			ID:         record.ID,
			RoomID:     record.RoomID,
			QuestionID: record.QuestionID,
			PlayerName: record.PlayerName,
			Answer:     deref(record.Answer),
			Skipped:    record.Skipped,
			CreatedAt:  record.CreatedAt,
		})
	}
	return answers
}

func responseFromRecord(record db.EventResponse) game.EventResponse {
	return game.EventResponse{
		ID:         record.ID,
		RoomID:     record.RoomID,
		EventID:    record.EventID,
		PlayerName: record.PlayerName,
		Response:   deref(record.Response),
		Completed:  record.Completed,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func roomUpdateFields(update game.RoomUpdate) map[string]any {
	fields := make(map[string]any)
	if update.Player2Name != nil {
		fields["player2_name"] = nullable(*update.Player2Name)
	}
	if update.Player1Connected != nil {
		fields["player1_connected"] = *update.Player1Connected
	}
	if update.Player2Connected != nil {
		fields["player2_connected"] = *update.Player2Connected
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.CurrentLevel != nil {
		fields["current_level"] = *update.CurrentLevel
	}
	if update.CurrentQuestion != nil {
		fields["current_question_id"] = nullable(*update.CurrentQuestion)
	}
	if update.CurrentEvent != nil {
		fields["current_event_id"] = nullable(*update.CurrentEvent)
	}
	if update.EventPlayerName != nil {
		fields["event_player_name"] = nullable(*update.EventPlayerName)
	}
	return fields
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

const uniqueViolationCode = "23505"

// isUniqueViolation detects a unique-index conflict. The gorm postgres
// driver surfaces pgx/v5 errors; the v1 type is kept for callers holding a
// bare lib/pq-era connection.
func isUniqueViolation(err error) bool {
	var v5Err *pgconnv5.PgError
	if errors.As(err, &v5Err) {
		return v5Err.Code == uniqueViolationCode
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}
