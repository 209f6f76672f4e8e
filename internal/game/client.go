package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// ErrNotYourTurn is returned by actions whose preconditions do not hold,
// such as advancing past a prompt the partner has not answered yet.
var ErrNotYourTurn = errors.New("action not available in current state")

// ClientConfig carries the tunables one client instance runs with.
type ClientConfig struct {
	AnswerPollInterval time.Duration
	EventPollInterval  time.Duration
	LevelUpDuration    time.Duration
	TriggerProbability float64
	GameTypeBias       float64
	Rand               *rand.Rand
	Logger             *slog.Logger
}

// Client is one player's view of one room. Every connected tab gets its own
// Client; there is no shared orchestrator deciding for both players. The
// client reacts to store changes and its own user actions, re-deriving the
// screen through the engine each time. All derivation runs under one mutex,
// which is the single-threaded model the engine assumes.
type Client struct {
	store      Store
	playerName string
	cfg        ClientConfig
	log        *slog.Logger

	session   *Session
	answers   *AnswerLedger
	responses *ResponseLedger
	questions *QuestionCatalog
	picker    *EventPicker
	eventByID map[string]Event

	mu            sync.Mutex
	engine        *Engine
	answeredCount int
	lastEventID   string
	levelUpTimer  *time.Timer
	watchers      []func(Screen)

	stop     chan struct{}
	wg       sync.WaitGroup
	unsubAns func()
	unsubEvt func()
}

// NewClient fetches both catalogs and wires the ledgers for the given room
// and player. Call Start to begin synchronizing.
func NewClient(ctx context.Context, store Store, room Room, playerName string, cfg ClientConfig) (*Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AnswerPollInterval <= 0 {
		cfg.AnswerPollInterval = 5 * time.Second
	}
	if cfg.EventPollInterval <= 0 {
		cfg.EventPollInterval = 3 * time.Second
	}
	if cfg.LevelUpDuration <= 0 {
		cfg.LevelUpDuration = 4 * time.Second
	}

	qs, err := store.Questions(ctx)
	if err != nil {
		return nil, err
	}
	evs, err := store.Events(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Event, len(evs))
	for _, ev := range evs {
		byID[ev.ID] = ev
	}

	log := cfg.Logger.With("room_id", room.ID, "player", playerName)
	c := &Client{
		store:      store,
		playerName: playerName,
		cfg:        cfg,
		log:        log,
		session:    NewSession(store, room),
		answers:    NewAnswerLedger(store, room.ID, playerName, log),
		responses:  NewResponseLedger(store, room.ID, playerName, log),
		questions:  NewQuestionCatalog(qs),
		picker:     NewEventPicker(evs, cfg.TriggerProbability, cfg.GameTypeBias, cfg.Rand),
		eventByID:  byID,
		engine:     NewEngine(),
		stop:       make(chan struct{}),
	}
	c.answers.SetQuestion(room.CurrentQuestion)
	c.lastEventID = room.CurrentEvent
	return c, nil
}

// Start begins the subscription and polling loops and derives the initial
// screen from whatever state the room is already in, so a rejoining player
// lands mid-game rather than at the start.
func (c *Client) Start(ctx context.Context) {
	c.session.OnChange(func(Room) { c.reobserve() })
	c.session.Start()

	c.unsubAns = c.store.SubscribeAnswers(c.session.Room().ID, func(a Answer) {
		c.answers.Observe(a)
		c.reobserve()
	})
	c.unsubEvt = c.store.SubscribeEventResponses(c.session.Room().ID, func(r EventResponse) {
		c.responses.Observe(r)
		c.reobserve()
	})

	c.wg.Add(1)
	go c.pollLoop(ctx)

	if err := c.answers.Fetch(ctx); err != nil {
		c.log.Debug("initial answer fetch failed", "error", err)
	}
	c.reobserve()
}

// Stop tears down subscriptions and pollers. The client is unusable after.
func (c *Client) Stop() {
	close(c.stop)
	if c.unsubAns != nil {
		c.unsubAns()
	}
	if c.unsubEvt != nil {
		c.unsubEvt()
	}
	c.session.Stop()
	c.mu.Lock()
	if c.levelUpTimer != nil {
		c.levelUpTimer.Stop()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// The poll loop is the freshness guarantee: subscriptions are best effort
// and polls repair anything they dropped. Poll errors are logged and
// swallowed so one missed cycle never flaps the screen.
func (c *Client) pollLoop(ctx context.Context) {
	defer c.wg.Done()
	answerTick := time.NewTicker(c.cfg.AnswerPollInterval)
	eventTick := time.NewTicker(c.cfg.EventPollInterval)
	defer answerTick.Stop()
	defer eventTick.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-answerTick.C:
			if err := c.session.Refresh(ctx); err != nil {
				c.log.Debug("room poll failed", "error", err)
			}
			if err := c.answers.Fetch(ctx); err != nil {
				c.log.Debug("answer poll failed", "error", err)
			}
			c.reobserve()
		case <-eventTick.C:
			if eventID := c.session.Room().CurrentEvent; eventID != "" {
				if err := c.responses.Fetch(ctx, eventID); err != nil {
					c.log.Debug("event response poll failed", "error", err)
				}
				c.reobserve()
			}
		}
	}
}

// OnScreenChange registers a watcher invoked whenever derivation lands on a
// different screen. Watchers run without the client mutex held.
func (c *Client) OnScreenChange(fn func(Screen)) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

func (c *Client) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Screen()
}

func (c *Client) Room() Room { return c.session.Room() }

func (c *Client) PlayerName() string { return c.playerName }

// CurrentQuestion resolves the room's prompt pointer against the catalog.
func (c *Client) CurrentQuestion() *Question {
	return c.questions.ByID(c.session.Room().CurrentQuestion)
}

// CurrentEvent resolves the room's event pointer, nil when no event is live.
func (c *Client) CurrentEvent() *Event {
	room := c.session.Room()
	if room.CurrentEvent == "" {
		return nil
	}
	if ev, ok := c.eventByID[room.CurrentEvent]; ok {
		return &ev
	}
	return nil
}

// PlayerEventResponse returns the local player's response to the live event.
func (c *Client) PlayerEventResponse() (EventResponse, bool) {
	room := c.session.Room()
	if room.CurrentEvent == "" {
		return EventResponse{}, false
	}
	return c.responses.PlayerResponse(room.CurrentEvent)
}

// PartnerEventResponse returns the partner's response to the live event.
// Private events never expose it.
func (c *Client) PartnerEventResponse() (EventResponse, bool) {
	room := c.session.Room()
	if room.CurrentEvent == "" {
		return EventResponse{}, false
	}
	if ev, ok := c.eventByID[room.CurrentEvent]; ok && ev.IsPrivate {
		return EventResponse{}, false
	}
	return c.responses.PartnerResponse(room.CurrentEvent)
}

// GameResult resolves the winner of a live game-type event once both
// players have locked in a choice.
func (c *Client) GameResult() (GameOutcome, bool) {
	ev := c.CurrentEvent()
	if ev == nil || ev.Type != EventGame {
		return "", false
	}
	mine, ok := c.responses.PlayerResponse(ev.ID)
	if !ok {
		return "", false
	}
	theirs, ok := c.responses.PartnerResponse(ev.ID)
	if !ok {
		return "", false
	}
	return GameWinner(mine.Response, theirs.Response), true
}

// Reveal returns the frozen reveal payload for the current prompt.
func (c *Client) Reveal() *RevealSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Reveal()
}

// reobserve is the single reduction step: resync ledger scopes with the
// latest room row, build the engine inputs, and re-derive the screen.
func (c *Client) reobserve() {
	c.mu.Lock()
	room := c.session.Room()

	c.answers.SetQuestion(room.CurrentQuestion)
	if room.CurrentEvent != c.lastEventID {
		c.responses.Reset()
		c.lastEventID = room.CurrentEvent
	}

	in := Inputs{
		Room:       room,
		PlayerName: c.playerName,
		Question:   c.questions.ByID(room.CurrentQuestion),
	}
	if room.CurrentEvent != "" {
		if ev, ok := c.eventByID[room.CurrentEvent]; ok {
			in.Event = &ev
			in.PlayerResponded = c.responses.HasPlayerResponded(ev.ID)
			in.PartnerResponded = c.responses.HasPartnerResponded(ev.ID)
			if room.RoleFor(&ev, c.playerName) == RoleObserver {
				in.PerformerCompleted = in.PartnerResponded
			}
		}
	}
	in.PlayerAnswered = c.answers.HasPlayerAnswered()
	in.PartnerAnswered = c.answers.HasPartnerAnswered()
	if a, ok := c.answers.PlayerAnswer(); ok {
		in.PlayerAnswer = &a
	}
	if a, ok := c.answers.PartnerAnswer(); ok {
		in.PartnerAnswer = &a
	}

	before := c.engine.Screen()
	after := c.engine.Observe(in)
	if after == ScreenLevelUp && c.levelUpTimer == nil {
		c.levelUpTimer = time.AfterFunc(c.cfg.LevelUpDuration, c.finishLevelUp)
	}
	var watchers []func(Screen)
	if after != before {
		watchers = append(watchers, c.watchers...)
	}
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(after)
	}
}

func (c *Client) finishLevelUp() {
	c.mu.Lock()
	c.levelUpTimer = nil
	before := c.engine.Screen()
	after := c.engine.CompleteLevelUp()
	var watchers []func(Screen)
	if after != before {
		watchers = append(watchers, c.watchers...)
	}
	c.mu.Unlock()
	for _, fn := range watchers {
		fn(after)
	}
}

// StartGame initializes the first prompt. Only meaningful while the room is
// still waiting; either player may race to call it and the second write
// simply restates the first.
func (c *Client) StartGame(ctx context.Context) error {
	room := c.session.Room()
	if room.CurrentQuestion != "" {
		c.reobserve()
		return nil
	}
	if !room.BothConnected() {
		return ErrNotYourTurn
	}
	first := c.questions.First()
	if first == nil {
		return errors.New("question catalog is empty")
	}
	err := c.session.Update(ctx, RoomUpdate{
		Status:          StringPtr(StatusPlaying),
		CurrentLevel:    IntPtr(first.Level),
		CurrentQuestion: StringPtr(first.ID),
	})
	if err != nil {
		return err
	}
	c.reobserve()
	return nil
}

// SubmitAnswer records the local player's answer for the current prompt.
func (c *Client) SubmitAnswer(ctx context.Context, text string) error {
	if err := c.answers.Submit(ctx, text, false); err != nil {
		return err
	}
	c.reobserve()
	return nil
}

// Skip records a pass for the current prompt. A skip still counts as
// answered for turn-advancement purposes.
func (c *Client) Skip(ctx context.Context) error {
	if err := c.answers.Submit(ctx, "", true); err != nil {
		return err
	}
	c.reobserve()
	return nil
}

// NextQuestion advances past the reveal. Guarded: a no-op error unless both
// players have answered the current prompt, which makes double-invocation
// harmless. Rolls the event dice first; only when no event fires does the
// prompt pointer move.
func (c *Client) NextQuestion(ctx context.Context) error {
	room := c.session.Room()
	if room.CurrentQuestion == "" || !c.answers.HasPlayerAnswered() || !c.answers.HasPartnerAnswered() {
		return ErrNotYourTurn
	}

	c.mu.Lock()
	c.answeredCount++
	count := c.answeredCount
	c.mu.Unlock()

	if c.picker.ShouldTrigger(count) {
		if ev := c.picker.Pick(room.CurrentLevel, ""); ev != nil {
			update := RoomUpdate{CurrentEvent: StringPtr(ev.ID)}
			if !ev.RequiresBoth {
				// The advancing player performs solo events.
				update.EventPlayerName = StringPtr(c.playerName)
			}
			if err := c.session.Update(ctx, update); err != nil {
				return err
			}
			c.reobserve()
			return nil
		}
	}
	return c.advancePrompt(ctx, room)
}

func (c *Client) advancePrompt(ctx context.Context, room Room) error {
	next := c.questions.Next(room.CurrentQuestion)
	var update RoomUpdate
	if next == nil {
		update.Status = StringPtr(StatusFinished)
	} else {
		update.CurrentQuestion = StringPtr(next.ID)
		if next.Level != room.CurrentLevel {
			update.CurrentLevel = IntPtr(next.Level)
		}
	}
	if err := c.session.Update(ctx, update); err != nil {
		return err
	}
	c.reobserve()
	return nil
}

// SubmitEventResponse records the local player's response to the live event.
func (c *Client) SubmitEventResponse(ctx context.Context, text string, completed bool) error {
	room := c.session.Room()
	if room.CurrentEvent == "" {
		return ErrNotYourTurn
	}
	if err := c.responses.Submit(ctx, room.CurrentEvent, text, completed); err != nil {
		return err
	}
	c.reobserve()
	return nil
}

// ContinueAfterEvent clears the event pointer and advances the prompt. If
// the partner's continue already cleared the pointer, only local event
// state is reset; advancing again would skip a prompt.
func (c *Client) ContinueAfterEvent(ctx context.Context) error {
	if err := c.session.Refresh(ctx); err != nil {
		c.log.Debug("room refresh before continue failed", "error", err)
	}
	room := c.session.Room()
	if room.CurrentEvent == "" {
		c.reobserve()
		return nil
	}
	err := c.session.Update(ctx, RoomUpdate{
		CurrentEvent:    StringPtr(""),
		EventPlayerName: StringPtr(""),
	})
	if err != nil {
		return err
	}
	room = c.session.Room()
	return c.advancePrompt(ctx, room)
}

// ShowHistory overlays the history screen; Back returns to whatever the
// overlay interrupted.
func (c *Client) ShowHistory() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.EnterHistory()
}

func (c *Client) Back() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.LeaveHistory()
}
