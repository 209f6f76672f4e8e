package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"entre-nous/internal/game"

	"github.com/google/uuid"
)

// Memory is an in-process implementation of game.Store. It backs tests and
// single-process play, and doubles as the reference semantics for the
// Postgres store: same uniqueness rules, same change feed behavior.
type Memory struct {
	mu        sync.Mutex
	rooms     map[string]game.Room
	answers   map[string]game.Answer
	responses map[string]game.EventResponse
	questions []game.Question
	events    []game.Event
	notify    *notifier
}

func NewMemory() *Memory {
	return &Memory{
		rooms:     make(map[string]game.Room),
		answers:   make(map[string]game.Answer),
		responses: make(map[string]game.EventResponse),
		notify:    newNotifier(),
	}
}

// SeedCatalogs installs the question and event catalogs served by Questions
// and Events. Catalog rows are read-only from the core's perspective.
func (m *Memory) SeedCatalogs(questions []game.Question, events []game.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append([]game.Question(nil), questions...)
	m.events = append([]game.Event(nil), events...)
	sortQuestions(m.questions)
	sortEvents(m.events)
}

func (m *Memory) CreateRoom(ctx context.Context, room *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	for _, existing := range m.rooms {
		if existing.RoomCode == room.RoomCode {
			return game.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	m.rooms[room.ID] = *room
	return nil
}

func (m *Memory) RoomByID(ctx context.Context, id string) (*game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	copied := room
	return &copied, nil
}

func (m *Memory) RoomByCode(ctx context.Context, code string) (*game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if room.RoomCode == code {
			copied := room
			return &copied, nil
		}
	}
	return nil, game.ErrNotFound
}

func (m *Memory) RoomsByIDs(ctx context.Context, ids []string) ([]game.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make([]game.Room, 0, len(ids))
	for _, id := range ids {
		if room, ok := m.rooms[id]; ok {
			found = append(found, room)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].UpdatedAt.After(found[j].UpdatedAt)
	})
	return found, nil
}

func (m *Memory) UpdateRoom(ctx context.Context, id string, update game.RoomUpdate) (*game.Room, error) {
	m.mu.Lock()
	room, ok := m.rooms[id]
	if !ok {
		m.mu.Unlock()
		return nil, game.ErrNotFound
	}
	applyRoomUpdate(&room, update)
	room.UpdatedAt = time.Now().UTC()
	m.rooms[id] = room
	m.mu.Unlock()

	m.notify.publishRoom(room)
	copied := room
	return &copied, nil
}

func (m *Memory) InsertAnswer(ctx context.Context, answer *game.Answer) error {
	m.mu.Lock()
	for _, existing := range m.answers {
		if existing.RoomID == answer.RoomID &&
			existing.QuestionID == answer.QuestionID &&
			existing.PlayerName == answer.PlayerName {
			m.mu.Unlock()
			return game.ErrDuplicate
		}
	}
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	answer.CreatedAt = time.Now().UTC()
	m.answers[answer.ID] = *answer
	stored := *answer
	m.mu.Unlock()

	m.notify.publishAnswer(stored)
	return nil
}

func (m *Memory) AnswersFor(ctx context.Context, roomID, questionID string) ([]game.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []game.Answer
	for _, answer := range m.answers {
		if answer.RoomID == roomID && answer.QuestionID == questionID {
			found = append(found, answer)
		}
	}
	sortAnswers(found)
	return found, nil
}

func (m *Memory) AnswersForRoom(ctx context.Context, roomID string) ([]game.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []game.Answer
	for _, answer := range m.answers {
		if answer.RoomID == roomID {
			found = append(found, answer)
		}
	}
	sortAnswers(found)
	return found, nil
}

func (m *Memory) UpsertEventResponse(ctx context.Context, response *game.EventResponse) error {
	m.mu.Lock()
	now := time.Now().UTC()
	for id, existing := range m.responses {
		if existing.RoomID == response.RoomID &&
			existing.EventID == response.EventID &&
			existing.PlayerName == response.PlayerName {
			existing.Response = response.Response
			existing.Completed = response.Completed
			existing.UpdatedAt = now
			m.responses[id] = existing
			*response = existing
			m.mu.Unlock()
			m.notify.publishResponse(existing)
			return nil
		}
	}
	if response.ID == "" {
		response.ID = uuid.NewString()
	}
	response.CreatedAt = now
	response.UpdatedAt = now
	m.responses[response.ID] = *response
	stored := *response
	m.mu.Unlock()

	m.notify.publishResponse(stored)
	return nil
}

func (m *Memory) EventResponsesFor(ctx context.Context, roomID, eventID string) ([]game.EventResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []game.EventResponse
	for _, response := range m.responses {
		if response.RoomID == roomID && response.EventID == eventID {
			found = append(found, response)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	return found, nil
}

func (m *Memory) Questions(ctx context.Context) ([]game.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]game.Question(nil), m.questions...), nil
}

func (m *Memory) Events(ctx context.Context) ([]game.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]game.Event(nil), m.events...), nil
}

func (m *Memory) SubscribeRoom(roomID string, fn func(game.Room)) func() {
	return m.notify.SubscribeRoom(roomID, fn)
}

func (m *Memory) SubscribeAnswers(roomID string, fn func(game.Answer)) func() {
	return m.notify.SubscribeAnswers(roomID, fn)
}

func (m *Memory) SubscribeEventResponses(roomID string, fn func(game.EventResponse)) func() {
	return m.notify.SubscribeEventResponses(roomID, fn)
}

func applyRoomUpdate(room *game.Room, update game.RoomUpdate) {
	if update.Player2Name != nil {
		room.Player2Name = *update.Player2Name
	}
	if update.Player1Connected != nil {
		room.Player1Connected = *update.Player1Connected
	}
	if update.Player2Connected != nil {
		room.Player2Connected = *update.Player2Connected
	}
	if update.Status != nil {
		room.Status = *update.Status
	}
	if update.CurrentLevel != nil {
		room.CurrentLevel = *update.CurrentLevel
	}
	if update.CurrentQuestion != nil {
		room.CurrentQuestion = *update.CurrentQuestion
	}
	if update.CurrentEvent != nil {
		room.CurrentEvent = *update.CurrentEvent
	}
	if update.EventPlayerName != nil {
		room.EventPlayerName = *update.EventPlayerName
	}
}

func sortAnswers(answers []game.Answer) {
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})
}

func sortQuestions(questions []game.Question) {
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Level != questions[j].Level {
			return questions[i].Level < questions[j].Level
		}
		return questions[i].SortOrder < questions[j].SortOrder
	})
}

func sortEvents(events []game.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Level != events[j].Level {
			return events[i].Level < events[j].Level
		}
		return events[i].SortOrder < events[j].SortOrder
	})
}
