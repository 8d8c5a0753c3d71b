package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/headsup/poker"
	"github.com/sanity-io/litter"
)

// Config holds the fixed parameters of a game.
type Config struct {
	SmallBlind    int
	BigBlind      int
	StartingStack int
	// PlayerSmallBlindFirst makes the human post the small blind in hand one.
	PlayerSmallBlindFirst bool
	// RecordTimeout bounds each HandRecorder call.
	RecordTimeout time.Duration
}

// DefaultConfig returns 10/20 blinds with 1000 chip stacks, the opponent
// posting the small blind first.
func DefaultConfig() Config {
	return Config{
		SmallBlind:    10,
		BigBlind:      20,
		StartingStack: 1000,
		RecordTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", c.SmallBlind)
	}
	if c.BigBlind <= c.SmallBlind {
		return fmt.Errorf("big blind (%d) must be greater than small blind (%d)", c.BigBlind, c.SmallBlind)
	}
	if c.StartingStack < c.BigBlind {
		return fmt.Errorf("starting stack (%d) must cover the big blind (%d)", c.StartingStack, c.BigBlind)
	}
	return nil
}

// StateDelta summarises what one accepted action changed.
type StateDelta struct {
	Actor       Actor
	Action      Action
	Amount      int
	Refund      int
	StageBefore Stage
	StageAfter  Stage
	Pot         int
	HandOver    bool
	GameOver    bool
}

// Engine owns the GameState and applies every change to it. It is not safe
// for concurrent use; see Session.
type Engine struct {
	cfg      Config
	policy   Policy
	state    GameState
	deck     *poker.Deck
	bus      *EventBus
	recorder HandRecorder
	clock    quartz.Clock
	logger   *log.Logger
	rng      *rand.Rand

	deckSource  func() (*poker.Deck, error)
	startStacks *Stacks
	hand        HandContext
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; the engine logs under the "engine" prefix.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the clock used for event and log timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRNG sets the random source used to shuffle each new deck.
func WithRNG(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithDeckSource replaces deck creation, e.g. to stack the deck in tests.
func WithDeckSource(source func() (*poker.Deck, error)) Option {
	return func(e *Engine) { e.deckSource = source }
}

// WithRecorder sets the persistence collaborator.
func WithRecorder(recorder HandRecorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

// WithStacks overrides the starting stacks.
func WithStacks(player, opponent int) Option {
	return func(e *Engine) { e.startStacks = &Stacks{Player: player, Opponent: opponent} }
}

// NewEngine creates an engine for a new game. No hand is dealt until
// NextHand is called.
func NewEngine(cfg Config, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		policy:   policy,
		bus:      NewEventBus(),
		recorder: NopRecorder{},
		clock:    quartz.NewReal(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithPrefix("engine")
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.deckSource == nil {
		e.deckSource = func() (*poker.Deck, error) { return poker.NewDeck(e.rng), nil }
	}
	if e.cfg.RecordTimeout <= 0 {
		e.cfg.RecordTimeout = DefaultConfig().RecordTimeout
	}
	e.Restart()
	return e
}

// Restart begins a fresh game with new stacks and a new game ID.
func (e *Engine) Restart() {
	stacks := Stacks{Player: e.cfg.StartingStack, Opponent: e.cfg.StartingStack}
	if e.startStacks != nil {
		stacks = *e.startStacks
	}
	e.state = GameState{
		GameID:             uuid.New(),
		SmallBlind:         e.cfg.SmallBlind,
		BigBlind:           e.cfg.BigBlind,
		IsPlayerSmallBlind: e.cfg.PlayerSmallBlindFirst,
		HandOver:           true,
	}
	e.state.Seats[Player].Stack = stacks.Player
	e.state.Seats[Opponent].Stack = stacks.Opponent
	e.deck = nil
	e.logger.Info("New game", "game", e.state.GameID, "stacks", stacks)
}

// Subscribe registers an event subscriber.
func (e *Engine) Subscribe(subscriber EventSubscriber) (unsubscribe func()) {
	return e.bus.Subscribe(subscriber)
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// State returns a shallow copy of the game state.
func (e *Engine) State() GameState { return e.state }

// Snapshot returns the human player's picture of the game.
func (e *Engine) Snapshot() Snapshot { return e.snapshot() }

// View returns the read-only policy view for actor.
func (e *Engine) View(actor Actor) View { return e.view(actor) }

// LegalActions returns what actor could do if it were their turn.
func (e *Engine) LegalActions(actor Actor) LegalActions { return e.legal(actor) }

func (e *Engine) legal(actor Actor) LegalActions {
	s := &e.state
	return legalActions(s.Seat(actor), s.Seat(actor.Other()), s.CurrentBet, s.BigBlind)
}

// NextHand rotates the blinds, shuffles a new deck, deals and posts blinds.
func (e *Engine) NextHand(ctx context.Context) error {
	s := &e.state
	if s.GameOver {
		return ErrGameOver
	}
	if s.HandNumber > 0 && !s.HandOver {
		return ErrHandInProgress
	}

	deck, err := e.deckSource()
	if err != nil {
		return fmt.Errorf("new deck: %w", err)
	}
	playerHole, err := deck.Deal(2)
	if err != nil {
		return fmt.Errorf("dealing player: %w", err)
	}
	opponentHole, err := deck.Deal(2)
	if err != nil {
		return fmt.Errorf("dealing opponent: %w", err)
	}

	if s.HandNumber > 0 {
		s.IsPlayerSmallBlind = !s.IsPlayerSmallBlind
	}
	startStacks := s.Stacks()
	e.deck = deck
	s.HandNumber++
	s.HandID = uuid.New()
	s.Stage = Preflop
	s.Pot = 0
	s.Community = nil
	s.ActionLog = nil
	s.HandOver = false
	s.Result = nil
	for i := range s.Seats {
		s.Seats[i] = Seat{Stack: s.Seats[i].Stack}
	}
	s.Seats[Player].Hole = playerHole
	s.Seats[Opponent].Hole = opponentHole

	sbActor := s.SmallBlindActor()
	sb, bb := s.Seat(sbActor), s.Seat(sbActor.Other())
	s.Pot += sb.commit(s.SmallBlind)
	s.Pot += bb.commit(s.BigBlind)
	e.logEntry(LogEntry{Kind: LogBlind, Actor: actorPtr(sbActor), Amount: sb.RoundBet,
		Text: fmt.Sprintf("%s posts small blind %d", sbActor, sb.RoundBet)})
	e.logEntry(LogEntry{Kind: LogBlind, Actor: actorPtr(sbActor.Other()), Amount: bb.RoundBet,
		Text: fmt.Sprintf("%s posts big blind %d", sbActor.Other(), bb.RoundBet)})

	s.CurrentBet = max(sb.RoundBet, bb.RoundBet)
	s.LastRaiseSize = s.BigBlind
	s.TurnHolder = sbActor
	s.RoundFirstAction = true
	s.NeedsResponse = sb.RoundBet < s.CurrentBet

	e.hand = HandContext{
		GameID:             s.GameID,
		HandID:             s.HandID,
		HandNumber:         s.HandNumber,
		SmallBlind:         s.SmallBlind,
		BigBlind:           s.BigBlind,
		PlayerIsSmallBlind: s.IsPlayerSmallBlind,
		StartStacks:        startStacks,
		StartedAt:          e.clock.Now(),
	}
	e.logger.Info("Hand started", "hand", s.HandNumber, "small_blind", sbActor, "stacks", startStacks)
	if e.logger.GetLevel() <= log.DebugLevel {
		e.logger.Debug("Hand state", "state", litter.Sdump(e.state))
	}

	e.record(ctx, "start", func(ctx context.Context) error {
		return e.recorder.RecordHandStart(ctx, e.hand)
	})
	e.bus.Publish(HandStartEvent{baseEvent: e.event(), HandNumber: s.HandNumber, SmallBlindActor: sbActor})

	// A blind can put a short stack all-in with nothing left to decide.
	e.returnUncalled()
	if e.roundComplete() {
		return e.endRound(ctx)
	}
	return nil
}

// SubmitAction validates and applies an action. A rejected action returns
// an *ActionError and leaves the state unchanged.
func (e *Engine) SubmitAction(ctx context.Context, actor Actor, action Action) (StateDelta, error) {
	if err := e.checkTurn(actor, action); err != nil {
		return StateDelta{}, err
	}

	s := &e.state
	seat, other := s.Seat(actor), s.Seat(actor.Other())
	legal := e.legal(actor)
	action, err := normalizeAction(actor, action, legal)
	if err != nil {
		return StateDelta{}, err
	}

	delta := StateDelta{Actor: actor, Action: action, StageBefore: s.Stage}
	var text string

	switch action.Kind {
	case Fold:
		seat.Folded = true
		text = fmt.Sprintf("%s folds", actor)
	case Check:
		s.NeedsResponse = false
		text = fmt.Sprintf("%s checks", actor)
	case Call:
		delta.Amount = seat.commit(legal.CallAmount)
		s.NeedsResponse = false
		text = fmt.Sprintf("%s calls %d", actor, delta.Amount)
	case Raise, AllIn:
		delta.Amount = seat.commit(action.Amount - seat.RoundBet)
		if seat.RoundBet > s.CurrentBet {
			s.LastRaiseSize = seat.RoundBet - s.CurrentBet
			s.CurrentBet = seat.RoundBet
			other.Acted = false
			s.NeedsResponse = true
		} else {
			s.NeedsResponse = false
		}
		if action.Kind == AllIn {
			text = fmt.Sprintf("%s goes all-in for %d", actor, seat.RoundBet)
		} else {
			text = fmt.Sprintf("%s raises to %d", actor, seat.RoundBet)
		}
	}
	s.Pot += delta.Amount
	seat.Acted = true
	s.RoundFirstAction = false

	e.logEntry(LogEntry{Kind: LogAction, Actor: actorPtr(actor), Action: kindPtr(action.Kind), Amount: delta.Amount, Text: text})
	e.logger.Debug("Action", "hand", s.HandNumber, "stage", s.Stage, "actor", actor, "action", action, "amount", delta.Amount, "pot", s.Pot)

	var endErr error
	if action.Kind == Fold {
		e.publishAction(delta)
		e.awardFold(ctx, actor.Other())
	} else {
		delta.Refund = e.returnUncalled()
		complete := e.roundComplete()
		if !complete {
			s.TurnHolder = actor.Other()
		}
		e.publishAction(delta)
		if complete {
			endErr = e.endRound(ctx)
		}
	}

	delta.StageAfter = s.Stage
	delta.Pot = s.Pot
	delta.HandOver = s.HandOver
	delta.GameOver = s.GameOver
	return delta, endErr
}

// AdvanceOpponent asks the policy for the opponent's decision and applies
// it. An illegal decision is logged and replaced by a passive action.
func (e *Engine) AdvanceOpponent(ctx context.Context) (StateDelta, error) {
	return e.advance(ctx, Opponent, e.policy)
}

func (e *Engine) advance(ctx context.Context, actor Actor, policy Policy) (StateDelta, error) {
	if err := e.checkTurn(actor, Action{}); err != nil {
		return StateDelta{}, err
	}

	view := e.view(actor)
	action := policy.Decide(view)
	delta, err := e.SubmitAction(ctx, actor, action)

	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		fallback := passiveAction(view.Legal)
		e.logger.Warn("Policy chose an illegal action", "actor", actor, "action", action, "error", err, "fallback", fallback)
		return e.SubmitAction(ctx, actor, fallback)
	}
	return delta, err
}

func (e *Engine) checkTurn(actor Actor, action Action) error {
	s := &e.state
	switch {
	case s.GameOver:
		return reject(actor, action, ErrGameOver, "")
	case s.HandNumber == 0 || s.HandOver:
		return reject(actor, action, ErrHandOver, "")
	case actor != s.TurnHolder:
		return reject(actor, action, ErrNotYourTurn, "waiting for %s", s.TurnHolder)
	}
	return nil
}

// normalizeAction checks action against legal, turning a call of nothing
// into a check and a raise of the whole stack into an all-in.
func normalizeAction(actor Actor, action Action, legal LegalActions) (Action, error) {
	switch action.Kind {
	case Fold:
		if !legal.Can(Fold) {
			return action, reject(actor, action, ErrIllegalAction, "nothing to call, check instead")
		}
	case Check:
		if !legal.Can(Check) {
			return action, reject(actor, action, ErrIllegalAction, "%d to call", legal.CallAmount)
		}
	case Call:
		if legal.Can(Check) {
			return Action{Kind: Check}, nil
		}
		if !legal.Can(Call) {
			return action, reject(actor, action, ErrIllegalAction, "")
		}
	case AllIn:
		if !legal.Can(AllIn) {
			return action, reject(actor, action, ErrIllegalAction, "opponent is already all-in")
		}
		return Action{Kind: AllIn, Amount: legal.MaxRaise}, nil
	case Raise:
		switch {
		case action.Amount > legal.MaxRaise:
			return action, reject(actor, action, ErrRaiseTooLarge, "maximum is %d", legal.MaxRaise)
		case action.Amount == legal.MaxRaise && legal.Can(AllIn):
			return Action{Kind: AllIn, Amount: legal.MaxRaise}, nil
		case !legal.Can(Raise):
			return action, reject(actor, action, ErrIllegalAction, "raising is not allowed")
		case action.Amount < legal.MinRaise:
			return action, reject(actor, action, ErrRaiseTooSmall, "minimum is %d", legal.MinRaise)
		}
	default:
		return action, reject(actor, action, ErrIllegalAction, "unknown action")
	}
	return action, nil
}

// returnUncalled gives back the part of a bet a short all-in cannot match.
func (e *Engine) returnUncalled() int {
	s := &e.state
	for _, a := range []Actor{Player, Opponent} {
		short, other := s.Seat(a), s.Seat(a.Other())
		if !short.AllIn || other.RoundBet <= short.RoundBet {
			continue
		}
		excess := other.RoundBet - short.RoundBet
		other.refund(excess)
		s.Pot -= excess
		s.CurrentBet = short.RoundBet
		e.logEntry(LogEntry{Kind: LogRefund, Actor: actorPtr(a.Other()), Amount: excess,
			Text: fmt.Sprintf("uncalled %d returned to %s", excess, a.Other())})
		return excess
	}
	return 0
}

func (e *Engine) roundComplete() bool {
	p, o := &e.state.Seats[Player], &e.state.Seats[Opponent]
	if p.RoundBet != o.RoundBet {
		return false
	}
	if p.AllIn || o.AllIn {
		return true
	}
	return p.Acted && o.Acted
}

func (e *Engine) anyAllIn() bool {
	return e.state.Seats[Player].AllIn || e.state.Seats[Opponent].AllIn
}

// endRound deals the next street, or runs the board out to showdown when a
// party is all-in.
func (e *Engine) endRound(ctx context.Context) error {
	for {
		if e.state.Stage == River {
			return e.showdown(ctx)
		}
		if err := e.dealStreet(); err != nil {
			return err
		}
		if !e.anyAllIn() {
			return nil
		}
	}
}

func (e *Engine) dealStreet() error {
	s := &e.state
	next := s.Stage + 1
	n := 1
	if next == Flop {
		n = 3
	}
	cards, err := e.deck.Deal(n)
	if err != nil {
		return fmt.Errorf("dealing %s: %w", next, err)
	}

	s.Stage = next
	s.Community = append(s.Community, cards...)
	s.CurrentBet = 0
	s.LastRaiseSize = 0
	s.NeedsResponse = false
	s.RoundFirstAction = true
	s.TurnHolder = s.SmallBlindActor()
	for i := range s.Seats {
		s.Seats[i].RoundBet = 0
		s.Seats[i].Acted = false
	}

	e.logEntry(LogEntry{Kind: LogStage, Text: fmt.Sprintf("%s: %s", next, poker.FormatCards(s.Community))})
	e.logger.Debug("Street dealt", "hand", s.HandNumber, "stage", next, "board", poker.FormatCards(s.Community))
	e.bus.Publish(StageChangeEvent{baseEvent: e.event(), Stage: next, Community: append([]poker.Card(nil), s.Community...)})
	return nil
}

func (e *Engine) showdown(ctx context.Context) error {
	s := &e.state
	playerHand, err := poker.Evaluate(s.Seats[Player].Hole, s.Community)
	if err != nil {
		return fmt.Errorf("evaluating player hand: %w", err)
	}
	opponentHand, err := poker.Evaluate(s.Seats[Opponent].Hole, s.Community)
	if err != nil {
		return fmt.Errorf("evaluating opponent hand: %w", err)
	}

	s.Stage = Showdown
	e.logEntry(LogEntry{Kind: LogStage, Text: fmt.Sprintf("showdown: player %s, opponent %s",
		playerHand.Describe(), opponentHand.Describe())})

	result := HandResult{
		Pot:   s.Pot,
		Hands: map[Actor]poker.EvaluatedHand{Player: playerHand, Opponent: opponentHand},
	}
	switch poker.Compare(playerHand, opponentHand) {
	case 1:
		result.Winner = actorPtr(Player)
		result.Payouts.Player = s.Pot
	case -1:
		result.Winner = actorPtr(Opponent)
		result.Payouts.Opponent = s.Pot
	default:
		// The odd chip goes to the opponent.
		result.Payouts.Player = s.Pot / 2
		result.Payouts.Opponent = s.Pot - s.Pot/2
	}
	e.bus.Publish(StageChangeEvent{baseEvent: e.event(), Stage: Showdown, Community: append([]poker.Card(nil), s.Community...)})
	e.finishHand(ctx, result)
	return nil
}

func (e *Engine) awardFold(ctx context.Context, winner Actor) {
	result := HandResult{Winner: actorPtr(winner), Folded: true, Pot: e.state.Pot}
	if winner == Player {
		result.Payouts.Player = e.state.Pot
	} else {
		result.Payouts.Opponent = e.state.Pot
	}
	e.finishHand(ctx, result)
}

func (e *Engine) finishHand(ctx context.Context, result HandResult) {
	s := &e.state
	s.Seats[Player].Stack += result.Payouts.Player
	s.Seats[Opponent].Stack += result.Payouts.Opponent
	s.Pot = 0
	s.HandOver = true
	s.Result = &result

	if result.Winner != nil {
		e.logEntry(LogEntry{Kind: LogWin, Actor: result.Winner, Amount: result.Pot,
			Text: fmt.Sprintf("%s wins %d", *result.Winner, result.Pot)})
	} else {
		e.logEntry(LogEntry{Kind: LogWin, Amount: result.Pot,
			Text: fmt.Sprintf("split pot %d (%d/%d)", result.Pot, result.Payouts.Player, result.Payouts.Opponent)})
	}

	for _, a := range []Actor{Player, Opponent} {
		if s.Seats[a].Stack <= 0 {
			s.GameOver = true
			s.GameWinner = actorPtr(a.Other())
		}
	}
	e.logger.Info("Hand finished", "hand", s.HandNumber, "pot", result.Pot, "winner", winnerName(result), "stacks", s.Stacks())

	final := FinalStacks{
		Stacks:   s.Stacks(),
		Result:   result,
		Board:    append([]poker.Card(nil), s.Community...),
		Log:      append([]LogEntry(nil), s.ActionLog...),
		EndedAt:  e.clock.Now(),
		GameOver: s.GameOver,
	}
	e.record(ctx, "end", func(ctx context.Context) error {
		return e.recorder.RecordHandEnd(ctx, e.hand, final)
	})

	e.bus.Publish(HandEndEvent{baseEvent: e.event(), Result: result})
	if s.GameOver {
		e.logger.Info("Game over", "game", s.GameID, "winner", *s.GameWinner, "hands", s.HandNumber)
		e.bus.Publish(GameOverEvent{baseEvent: e.event(), Winner: *s.GameWinner})
	}
}

func winnerName(result HandResult) string {
	if result.Winner == nil {
		return "split"
	}
	return result.Winner.String()
}

func (e *Engine) record(ctx context.Context, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RecordTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		e.logger.Warn("Failed to record hand "+what, "hand", e.state.HandNumber, "error", err)
	}
}

func (e *Engine) logEntry(entry LogEntry) {
	entry.Stage = e.state.Stage
	entry.Pot = e.state.Pot
	entry.At = e.clock.Now()
	e.state.ActionLog = append(e.state.ActionLog, entry)
}

func (e *Engine) event() baseEvent {
	return baseEvent{snapshot: e.snapshot(), timestamp: e.clock.Now()}
}

func (e *Engine) publishAction(delta StateDelta) {
	e.bus.Publish(ActionEvent{
		baseEvent: e.event(),
		Actor:     delta.Actor,
		Action:    delta.Action,
		Amount:    delta.Amount,
		Refund:    delta.Refund,
	})
}
