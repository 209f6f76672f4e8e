package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// AnswerLedger is the per-question submission log. Two producers feed it:
// the store's insert feed and a bounded-interval poll, deduplicated by row
// id. The feed is treated as a push optimization, the poll as the
// guarantee.
type AnswerLedger struct {
	store      Store
	roomID     string
	playerName string
	log        *slog.Logger

	mu         sync.Mutex
	questionID string
	byID       map[string]Answer
}

func NewAnswerLedger(store Store, roomID, playerName string, log *slog.Logger) *AnswerLedger {
	if log == nil {
		log = slog.Default()
	}
	return &AnswerLedger{
		store:      store,
		roomID:     roomID,
		playerName: playerName,
		log:        log,
		byID:       make(map[string]Answer),
	}
}

// SetQuestion re-scopes the ledger. Moving to a new question discards the
// cache so stale rows from the previous prompt can never satisfy a
// "has answered" check against the new one.
func (l *AnswerLedger) SetQuestion(questionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.questionID == questionID {
		return
	}
	l.questionID = questionID
	l.byID = make(map[string]Answer)
}

// Submit records this player's answer (or skip) for the current question.
// A second submit for the same question is a silent no-op, both against the
// local cache and against the store's uniqueness constraint.
func (l *AnswerLedger) Submit(ctx context.Context, text string, skipped bool) error {
	l.mu.Lock()
	questionID := l.questionID
	already := l.hasAnsweredLocked(l.playerName)
	l.mu.Unlock()
	if questionID == "" {
		return errors.New("no active question")
	}
	if already {
		l.log.Debug("duplicate answer ignored", "question_id", questionID, "player", l.playerName)
		return nil
	}
	answer := &Answer{
		RoomID:     l.roomID,
		QuestionID: questionID,
		PlayerName: l.playerName,
		Answer:     text,
		Skipped:    skipped,
	}
	if err := l.store.InsertAnswer(ctx, answer); err != nil {
		if errors.Is(err, ErrDuplicate) {
			l.log.Debug("duplicate answer rejected by store", "question_id", questionID)
			return nil
		}
		return fmt.Errorf("submitting answer: %w", err)
	}
	// Re-fetch immediately rather than relying on the async feed alone.
	return l.Fetch(ctx)
}

// Fetch polls the store for the current question's rows.
func (l *AnswerLedger) Fetch(ctx context.Context) error {
	l.mu.Lock()
	questionID := l.questionID
	l.mu.Unlock()
	if questionID == "" {
		return nil
	}
	answers, err := l.store.AnswersFor(ctx, l.roomID, questionID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.questionID != questionID {
		return nil
	}
	for _, answer := range answers {
		l.byID[answer.ID] = answer
	}
	return nil
}

// Observe is the subscription sink. Rows for other questions are dropped.
func (l *AnswerLedger) Observe(answer Answer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if answer.RoomID != l.roomID || answer.QuestionID != l.questionID {
		return
	}
	l.byID[answer.ID] = answer
}

func (l *AnswerLedger) HasPlayerAnswered() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasAnsweredLocked(l.playerName)
}

func (l *AnswerLedger) HasPartnerAnswered() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, answer := range l.byID {
		if answer.PlayerName != l.playerName {
			return true
		}
	}
	return false
}

func (l *AnswerLedger) PlayerAnswer() (Answer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, answer := range l.byID {
		if answer.PlayerName == l.playerName {
			return answer, true
		}
	}
	return Answer{}, false
}

func (l *AnswerLedger) PartnerAnswer() (Answer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, answer := range l.byID {
		if answer.PlayerName != l.playerName {
			return answer, true
		}
	}
	return Answer{}, false
}

func (l *AnswerLedger) hasAnsweredLocked(playerName string) bool {
	for _, answer := range l.byID {
		if answer.PlayerName == playerName {
			return true
		}
	}
	return false
}
