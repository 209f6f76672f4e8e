package store

import (
	"sync"

	"entre-nous/internal/game"
)

// notifier fans row changes out to per-room subscriber sets. It plays the
// role of the record store's change feed: best-effort, in-order per caller,
// no delivery guarantee across reconnects (the ledgers poll to cover that).
type notifier struct {
	mu        sync.Mutex
	nextID    int
	rooms     map[string]map[int]func(game.Room)
	answers   map[string]map[int]func(game.Answer)
	responses map[string]map[int]func(game.EventResponse)
}

func newNotifier() *notifier {
	return &notifier{
		rooms:     make(map[string]map[int]func(game.Room)),
		answers:   make(map[string]map[int]func(game.Answer)),
		responses: make(map[string]map[int]func(game.EventResponse)),
	}
}

func subscribe[T any](n *notifier, set map[string]map[int]func(T), roomID string, fn func(T)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	group := set[roomID]
	if group == nil {
		group = make(map[int]func(T))
		set[roomID] = group
	}
	id := n.nextID
	n.nextID++
	group[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(group, id)
		if len(group) == 0 {
			delete(set, roomID)
		}
	}
}

func publish[T any](n *notifier, set map[string]map[int]func(T), roomID string, value T) {
	n.mu.Lock()
	fns := make([]func(T), 0, len(set[roomID]))
	for _, fn := range set[roomID] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(value)
	}
}

func (n *notifier) SubscribeRoom(roomID string, fn func(game.Room)) func() {
	return subscribe(n, n.rooms, roomID, fn)
}

func (n *notifier) SubscribeAnswers(roomID string, fn func(game.Answer)) func() {
	return subscribe(n, n.answers, roomID, fn)
}

func (n *notifier) SubscribeEventResponses(roomID string, fn func(game.EventResponse)) func() {
	return subscribe(n, n.responses, roomID, fn)
}

func (n *notifier) publishRoom(room game.Room) {
	publish(n, n.rooms, room.ID, room)
}

func (n *notifier) publishAnswer(answer game.Answer) {
	publish(n, n.answers, answer.RoomID, answer)
}

func (n *notifier) publishResponse(response game.EventResponse) {
	publish(n, n.responses, response.RoomID, response)
}
