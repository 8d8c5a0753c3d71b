package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// SessionConfig controls the pacing of a Session. Delays are presentation
// only and never change outcomes.
type SessionConfig struct {
	// ThinkDelay is how long the opponent appears to think.
	ThinkDelay time.Duration
	// HandPause is the gap between the end of a hand and the next deal.
	HandPause time.Duration
	// StopOnGameOver makes Run return once a stack reaches zero instead of
	// waiting for Restart.
	StopOnGameOver bool

	Clock  quartz.Clock
	Logger *log.Logger
}

// Session drives an Engine from a single goroutine: it applies the human
// player's submissions, lets the opponent act after the think delay and
// deals the next hand after the pause.
type Session struct {
	engine *Engine
	cfg    SessionConfig
	logger *log.Logger

	requests chan request
	done     chan struct{}

	mu       sync.RWMutex
	snapshot Snapshot
}

type requestKind int

const (
	submitRequest requestKind = iota
	restartRequest
)

type request struct {
	kind   requestKind
	action Action
	reply  chan response
}

type response struct {
	delta StateDelta
	err   error
}

// NewSession wraps engine. Nothing happens until Run is called.
func NewSession(engine *Engine, cfg SessionConfig) *Session {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Session{
		engine:   engine,
		cfg:      cfg,
		logger:   cfg.Logger.WithPrefix("session"),
		requests: make(chan request),
		done:     make(chan struct{}),
		snapshot: engine.Snapshot(),
	}
}

// Snapshot returns the state as of the last change applied by Run.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Submit hands the human player's action to the Run goroutine and waits
// for the engine's verdict.
func (s *Session) Submit(ctx context.Context, action Action) (StateDelta, error) {
	resp, err := s.send(ctx, request{kind: submitRequest, action: action})
	if err != nil {
		return StateDelta{}, err
	}
	return resp.delta, resp.err
}

// Restart starts a new game once the current one is over.
func (s *Session) Restart(ctx context.Context) error {
	resp, err := s.send(ctx, request{kind: restartRequest})
	if err != nil {
		return err
	}
	return resp.err
}

func (s *Session) send(ctx context.Context, req request) (response, error) {
	req.reply = make(chan response, 1)
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-s.done:
		return response{}, ErrSessionClosed
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

var fired = func() chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}()

type pendingStep struct {
	key   stepKey
	timer *quartz.Timer
	wait  <-chan time.Time
	run   func(context.Context) error
}

// stepKey identifies the point in the game a timed step was scheduled for.
type stepKey struct {
	hand     int
	actions  int
	handOver bool
}

func (p *pendingStep) stop() {
	if p != nil && p.timer != nil {
		p.timer.Stop()
	}
}

// Run deals the first hand if needed and then loops until ctx is cancelled,
// or the game ends with StopOnGameOver set.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	if st := s.engine.State(); st.HandNumber == 0 && !st.GameOver {
		if err := s.engine.NextHand(ctx); err != nil {
			return err
		}
	}
	s.publish()

	var pending *pendingStep
	defer func() { pending.stop() }()

	for {
		st := s.engine.State()
		if st.GameOver && s.cfg.StopOnGameOver {
			return nil
		}

		key := stepKey{hand: st.HandNumber, actions: len(st.ActionLog), handOver: st.HandOver}
		if pending == nil || pending.key != key {
			pending.stop()
			pending = s.schedule(st, key)
		}

		var wait <-chan time.Time
		if pending != nil {
			wait = pending.wait
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			s.handle(ctx, req)
		case <-wait:
			step := pending
			pending = nil
			if err := step.run(ctx); err != nil {
				var actionErr *ActionError
				if !errors.As(err, &actionErr) {
					return err
				}
				s.logger.Warn("Scheduled step rejected", "error", err)
			}
			s.publish()
		}
	}
}

// schedule returns the timed step for the current state, or nil when the
// session is waiting on the human player.
func (s *Session) schedule(st GameState, key stepKey) *pendingStep {
	var (
		delay time.Duration
		run   func(context.Context) error
	)
	switch {
	case st.GameOver:
		return nil
	case st.HandOver:
		delay = s.cfg.HandPause
		run = s.engine.NextHand
	case st.TurnHolder == Opponent:
		delay = s.cfg.ThinkDelay
		run = func(ctx context.Context) error {
			_, err := s.engine.AdvanceOpponent(ctx)
			return err
		}
	default:
		return nil
	}

	step := &pendingStep{key: key, run: run, wait: fired}
	if delay > 0 {
		step.timer = s.cfg.Clock.NewTimer(delay, "session", key.String())
		step.wait = step.timer.C
	}
	return step
}

func (k stepKey) String() string {
	if k.handOver {
		return "next-hand"
	}
	return "opponent"
}

func (s *Session) handle(ctx context.Context, req request) {
	var resp response
	switch req.kind {
	case submitRequest:
		resp.delta, resp.err = s.engine.SubmitAction(ctx, Player, req.action)
		if resp.err != nil {
			s.logger.Debug("Action rejected", "action", req.action, "error", resp.err)
		}
	case restartRequest:
		if !s.engine.State().GameOver {
			resp.err = ErrGameInProgress
			break
		}
		s.engine.Restart()
		resp.err = s.engine.NextHand(ctx)
	}
	s.publish()
	req.reply <- resp
}

func (s *Session) publish() {
	snap := s.engine.Snapshot()
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}
