package game

import (
	"context"
	"fmt"
	"sync"
)

// Session holds this client's view of the shared room row. Remote changes
// replace the local copy verbatim; there is no client-side merge and no
// optimistic mutation. A write is not reflected locally until the store
// echoes it back through the subscription or a refresh.
type Session struct {
	store Store

	mu       sync.Mutex
	room     Room
	watchers []func(Room)
	unsub    func()
}

func NewSession(store Store, room Room) *Session {
	return &Session{store: store, room: room}
}

// Start subscribes to change notifications for the room row.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsub != nil {
		return
	}
	s.unsub = s.store.SubscribeRoom(s.room.ID, s.apply)
}

func (s *Session) Stop() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *Session) Room() Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// OnChange registers a watcher invoked with every fresh copy of the row.
func (s *Session) OnChange(fn func(Room)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Update writes a partial update to the store. Callers only ever touch the
// fields they own for the transition at hand; the refreshed row comes back
// through the change feed like any remote write.
func (s *Session) Update(ctx context.Context, update RoomUpdate) error {
	s.mu.Lock()
	id := s.room.ID
	s.mu.Unlock()
	if _, err := s.store.UpdateRoom(ctx, id, update); err != nil {
		return fmt.Errorf("updating room: %w", err)
	}
	return nil
}

// Refresh is the poll fallback: re-fetch the row and publish it if the store
// has moved past what we last saw.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	id := s.room.ID
	s.mu.Unlock()
	room, err := s.store.RoomByID(ctx, id)
	if err != nil {
		return err
	}
	s.apply(*room)
	return nil
}

func (s *Session) apply(room Room) {
	s.mu.Lock()
	if room.ID != s.room.ID {
		s.mu.Unlock()
		return
	}
	if room.UpdatedAt.Before(s.room.UpdatedAt) {
		s.mu.Unlock()
		return
	}
	s.room = room
	watchers := append([]func(Room){}, s.watchers...)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(room)
	}
}
