package game

// Screen is what a client should be showing right now. Screens are derived,
// not stored: every client recomputes its screen from the shared room row,
// the two ledgers and its own identity, and two clients looking at the same
// inputs must land on the same (or, for solo events, the complementary)
// screen without a server telling either of them what to do.
type Screen string

const (
	ScreenWaiting                  Screen = "waiting"
	ScreenQuestion                 Screen = "question"
	ScreenWaitingPartner           Screen = "waiting-partner"
	ScreenReveal                   Screen = "reveal"
	ScreenEvent                    Screen = "event"
	ScreenEventWaiting             Screen = "event-waiting"
	ScreenEventReveal              Screen = "event-reveal"
	ScreenPartnerEventWaiting      Screen = "partner-event-waiting"
	ScreenPartnerEventNotification Screen = "partner-event-notification"
	ScreenLevelUp                  Screen = "level-up"
	ScreenHistory                  Screen = "history"
	ScreenEnd                      Screen = "end"
)

// Inputs is everything Observe derives a screen from. The caller resolves
// catalog pointers and ledger flags; the engine itself never touches the
// store, which keeps it deterministic and directly testable.
type Inputs struct {
	Room       Room
	PlayerName string

	Question *Question // resolved from Room.CurrentQuestion, nil if unset
	Event    *Event    // resolved from Room.CurrentEvent, nil if unset

	PlayerAnswered  bool
	PartnerAnswered bool
	PlayerAnswer    *Answer
	PartnerAnswer   *Answer

	PlayerResponded    bool // completed response from the local player
	PartnerResponded   bool // completed response from the partner
	PerformerCompleted bool // solo events: performer's response is completed
}

// RevealSnapshot freezes what the reveal screen shows. It is captured once
// when both answers land and never re-queried, so a partner advancing the
// prompt underneath us cannot rewrite a reveal already on screen.
type RevealSnapshot struct {
	QuestionID    string
	QuestionText  string
	PlayerAnswer  *Answer
	PartnerAnswer *Answer
}

// Engine is the per-client screen reducer. One instance per client, fed by
// Observe on every room or ledger change. Not safe for concurrent use; the
// owning client serializes calls.
type Engine struct {
	screen Screen

	lastQuestionID string
	lastLevel      int
	reveal         *RevealSnapshot
	levelUpPending bool

	// history overlay bookkeeping
	inHistory bool
	resumeTo  Screen
}

func NewEngine() *Engine {
	return &Engine{screen: ScreenWaiting}
}

func (e *Engine) Screen() Screen {
	if e.inHistory {
		return ScreenHistory
	}
	return e.screen
}

// Reveal returns the frozen reveal payload, nil outside the reveal screen.
func (e *Engine) Reveal() *RevealSnapshot {
	return e.reveal
}

// Observe re-derives the screen from the latest inputs and returns it.
// Any prompt-pointer change is a hard reset: whatever terminal state this
// client was sitting in, the new prompt wins.
func (e *Engine) Observe(in Inputs) Screen {
	if in.Room.CurrentQuestion != e.lastQuestionID {
		crossed := e.lastLevel > 0 && in.Room.CurrentLevel > e.lastLevel
		e.lastQuestionID = in.Room.CurrentQuestion
		e.lastLevel = in.Room.CurrentLevel
		e.reveal = nil
		if crossed && in.Room.CurrentQuestion != "" {
			e.levelUpPending = true
		}
	} else if in.Room.CurrentLevel > e.lastLevel {
		e.lastLevel = in.Room.CurrentLevel
	}

	next := e.derive(in)
	if e.levelUpPending && next == ScreenQuestion {
		next = ScreenLevelUp
	} else if next != ScreenLevelUp {
		e.levelUpPending = false
	}

	e.screen = next
	if e.inHistory {
		e.resumeTo = next
		return ScreenHistory
	}
	return next
}

func (e *Engine) derive(in Inputs) Screen {
	room := in.Room

	if room.Status == StatusFinished {
		return ScreenEnd
	}
	if room.CurrentQuestion == "" {
		return ScreenWaiting
	}

	if room.CurrentEvent != "" && in.Event != nil {
		switch room.RoleFor(in.Event, in.PlayerName) {
		case RoleJoint:
			switch {
			case in.PlayerResponded && in.PartnerResponded:
				return ScreenEventReveal
			case in.PlayerResponded:
				return ScreenEventWaiting
			default:
				return ScreenEvent
			}
		case RolePerformer:
			return ScreenEvent
		case RoleObserver:
			if in.PerformerCompleted {
				return ScreenPartnerEventNotification
			}
			return ScreenPartnerEventWaiting
		}
	}

	if in.PlayerAnswered && in.PartnerAnswered {
		if e.reveal == nil || e.reveal.QuestionID != room.CurrentQuestion {
			snap := &RevealSnapshot{
				QuestionID:    room.CurrentQuestion,
				PlayerAnswer:  in.PlayerAnswer,
				PartnerAnswer: in.PartnerAnswer,
			}
			if in.Question != nil {
				snap.QuestionText = in.Question.Text
			}
			e.reveal = snap
		}
		return ScreenReveal
	}
	if in.PlayerAnswered {
		return ScreenWaitingPartner
	}
	return ScreenQuestion
}

// CompleteLevelUp ends the level-up interstitial. The owning client calls it
// when the fixed-duration animation timer fires; it is a no-op otherwise.
func (e *Engine) CompleteLevelUp() Screen {
	if e.screen != ScreenLevelUp {
		return e.Screen()
	}
	e.levelUpPending = false
	e.screen = ScreenQuestion
	return e.Screen()
}

// EnterHistory overlays the history screen without losing the state it
// interrupted. Idempotent.
func (e *Engine) EnterHistory() Screen {
	if !e.inHistory {
		e.inHistory = true
		e.resumeTo = e.screen
	}
	return ScreenHistory
}

// LeaveHistory returns to the screen history interrupted. If the shared row
// moved on while the overlay was up, resumeTo already tracks the re-derived
// screen, so back always lands somewhere current.
func (e *Engine) LeaveHistory() Screen {
	if e.inHistory {
		e.inHistory = false
		e.screen = e.resumeTo
	}
	return e.screen
}

// InEventState reports whether the current screen belongs to the event
// family. Used by the client to reset the response ledger when the shared
// event pointer clears.
func (e *Engine) InEventState() bool {
	switch e.screen {
	case ScreenEvent, ScreenEventWaiting, ScreenEventReveal,
		ScreenPartnerEventWaiting, ScreenPartnerEventNotification:
		return true
	}
	return false
}
