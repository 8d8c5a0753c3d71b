// Package game implements heads-up no-limit Texas Hold'em between a human
// player and an automated opponent.
//
// The main type is Engine, which owns the single GameState for a game and
// is the only place that state is mutated. Every change goes through
// SubmitAction (or AdvanceOpponent, which asks the Policy for a decision and
// submits it), so chip conservation and turn ownership are checked in one
// place.
//
// # Basic Usage
//
//	e := game.NewEngine(game.DefaultConfig(), bot.NewRandom(rng))
//	if err := e.NextHand(ctx); err != nil {
//	    return err
//	}
//	delta, err := e.SubmitAction(ctx, game.Player, game.Action{Kind: game.Call})
//
// # Deterministic Testing
//
// Inject a seeded *rand.Rand with WithRNG, or stack the deck for each hand
// with WithDeckSource:
//
//	e := game.NewEngine(cfg, policy, game.WithDeckSource(func() (*poker.Deck, error) {
//	    return poker.NewDeckWithTop(nil, poker.MustParseCards("As Ad Kc Kd 2h 7s 9c Jd 3s")...)
//	}))
//
// # Collaborators
//
//   - Policy: decides the opponent's actions from a read-only View
//   - EventSubscriber: receives HandStart, Action, StageChange, HandEnd and GameOver events
//   - HandRecorder: persists hand start and hand end; failures are logged and ignored
//   - Session: the goroutine that drives an Engine in real time with a quartz.Clock
package game
