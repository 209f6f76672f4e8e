package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ResponseLedger mirrors the answer ledger for bonus events, with one
// difference: a row may be updated in place, because an event can be
// re-entered after a reload before both sides have finished.
type ResponseLedger struct {
	store      Store
	roomID     string
	playerName string
	log        *slog.Logger

	mu   sync.Mutex
	byID map[string]EventResponse
}

func NewResponseLedger(store Store, roomID, playerName string, log *slog.Logger) *ResponseLedger {
	if log == nil {
		log = slog.Default()
	}
	return &ResponseLedger{
		store:      store,
		roomID:     roomID,
		playerName: playerName,
		log:        log,
		byID:       make(map[string]EventResponse),
	}
}

// Submit creates or updates this player's response for the event.
func (l *ResponseLedger) Submit(ctx context.Context, eventID, text string, completed bool) error {
	response := &EventResponse{
		RoomID:     l.roomID,
		EventID:    eventID,
		PlayerName: l.playerName,
		Response:   text,
		Completed:  completed,
	}
	if err := l.store.UpsertEventResponse(ctx, response); err != nil {
		return fmt.Errorf("submitting event response: %w", err)
	}
	l.mu.Lock()
	l.byID[response.ID] = *response
	l.mu.Unlock()
	return nil
}

func (l *ResponseLedger) Fetch(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	responses, err := l.store.EventResponsesFor(ctx, l.roomID, eventID)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, response := range responses {
		l.byID[response.ID] = response
	}
	return nil
}

// Observe is the subscription sink; updates replace by row id.
func (l *ResponseLedger) Observe(response EventResponse) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if response.RoomID != l.roomID {
		return
	}
	l.byID[response.ID] = response
}

// Reset clears the cache. It must run on every event boundary so a stale
// partner response cannot leak into the next event's checks.
func (l *ResponseLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID = make(map[string]EventResponse)
}

// HasPlayerResponded reports a completed response from this player. A row
// that exists but is not completed does not count.
func (l *ResponseLedger) HasPlayerResponded(eventID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, response := range l.byID {
		if response.EventID == eventID && response.PlayerName == l.playerName && response.Completed {
			return true
		}
	}
	return false
}

func (l *ResponseLedger) HasPartnerResponded(eventID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, response := range l.byID {
		if response.EventID == eventID && response.PlayerName != l.playerName && response.Completed {
			return true
		}
	}
	return false
}

func (l *ResponseLedger) PlayerResponse(eventID string) (EventResponse, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, response := range l.byID {
		if response.EventID == eventID && response.PlayerName == l.playerName {
			return response, true
		}
	}
	return EventResponse{}, false
}

func (l *ResponseLedger) PartnerResponse(eventID string) (EventResponse, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, response := range l.byID {
		if response.EventID == eventID && response.PlayerName != l.playerName {
			return response, true
		}
	}
	return EventResponse{}, false
}
