package game

import (
	"math/rand"
	"sync"
)

// EventPicker decides whether a bonus event interposes between two prompts
// and which one. The used-id set is scoped to the picker's lifetime and
// never persisted. Clearing it on exhaustion allows repeats once
// everything eligible has been seen.
type EventPicker struct {
	probability float64
	gameBias    float64
	rng         *rand.Rand

	mu     sync.Mutex
	events []Event
	used   map[string]struct{}
}

// NewEventPicker takes the catalog in (level, sort_order) order. A nil rng
// falls back to a shared source; tests pass a seeded one.
func NewEventPicker(events []Event, probability, gameBias float64, rng *rand.Rand) *EventPicker {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &EventPicker{
		probability: probability,
		gameBias:    gameBias,
		rng:         rng,
		events:      append([]Event(nil), events...),
		used:        make(map[string]struct{}),
	}
}

// ShouldTrigger flips the biased coin. The first two prompts of a game
// never trigger, whatever the seed. An event must not be the first thing
// a fresh game shows.
func (p *EventPicker) ShouldTrigger(answeredCount int) bool {
	if answeredCount <= 1 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.probability
}

// Pick selects an event at or below level, avoiding ids already used this
// session and biasing toward the game type, which is under-represented in
// the catalog. Returns nil when nothing is eligible: the turn then simply
// proceeds with no event.
func (p *EventPicker) Pick(level int, forcedType EventType) *Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	eligible := p.eligible(level, true)
	if forcedType != "" {
		if typed := filterType(eligible, forcedType); len(typed) > 0 {
			eligible = typed
		}
	} else if games := filterType(eligible, EventGame); len(games) > 0 && p.rng.Float64() < p.gameBias {
		eligible = games
	}

	if len(eligible) == 0 {
		// Exhausted: allow repeats and retry once against the full pool.
		p.used = make(map[string]struct{})
		eligible = p.eligible(level, false)
		if forcedType != "" {
			if typed := filterType(eligible, forcedType); len(typed) > 0 {
				eligible = typed
			}
		}
		if len(eligible) == 0 {
			return nil
		}
	}

	selected := eligible[p.rng.Intn(len(eligible))]
	p.used[selected.ID] = struct{}{}
	return &selected
}

func (p *EventPicker) eligible(level int, excludeUsed bool) []Event {
	var pool []Event
	for _, event := range p.events {
		if event.Level > level {
			continue
		}
		if excludeUsed {
			if _, taken := p.used[event.ID]; taken {
				continue
			}
		}
		pool = append(pool, event)
	}
	return pool
}

func filterType(events []Event, eventType EventType) []Event {
	var typed []Event
	for _, event := range events {
		if event.Type == eventType {
			typed = append(typed, event)
		}
	}
	return typed
}

// Rock-paper-scissors choices for the game event type.
const (
	ChoiceRock     = "rock"
	ChoicePaper    = "paper"
	ChoiceScissors = "scissors"
)

type GameOutcome string

const (
	OutcomePlayer  GameOutcome = "player"
	OutcomePartner GameOutcome = "partner"
	OutcomeTie     GameOutcome = "tie"
)

// GameWinner resolves a rock-paper-scissors round between the local player
// and the partner.
func GameWinner(player, partner string) GameOutcome {
	if player == partner {
		return OutcomeTie
	}
	switch {
	case player == ChoiceRock && partner == ChoiceScissors,
		player == ChoicePaper && partner == ChoiceRock,
		player == ChoiceScissors && partner == ChoicePaper:
		return OutcomePlayer
	}
	return OutcomePartner
}
