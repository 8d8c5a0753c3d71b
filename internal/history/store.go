package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/migrations"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect names a supported database. It doubles as the database/sql
// driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Store records games and hands in a SQL database.
type Store struct {
	db         *sql.DB
	dialect    Dialect
	playerName string
	opponent   string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPlayerName sets the name stored for the human player.
func WithPlayerName(name string) StoreOption {
	return func(s *Store) { s.playerName = name }
}

// WithOpponentName sets the stored opponent description, usually the bot
// strategy.
func WithOpponentName(name string) StoreOption {
	return func(s *Store) { s.opponent = name }
}

// Open connects to the database and applies pending migrations. For SQLite
// dsn is a file path.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...StoreOption) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty %s dsn", dialect)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case Postgres:
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
	case SQLite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		for _, pragma := range []string{`PRAGMA busy_timeout = 5000`, `PRAGMA foreign_keys = ON`} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
	default:
		_ = db.Close()
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}
	if err := Migrate(db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db, dialect, opts...), nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB, dialect Dialect, opts ...StoreOption) *Store {
	s := &Store{db: db, dialect: dialect, playerName: "player", opponent: "bot"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate brings the schema up to date. It is a no-op when nothing changed.
func Migrate(db *sql.DB, dialect Dialect) error {
	src, err := iofs.New(migrations.FS, string(dialect))
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case SQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("failed to open migration driver: %w", err)
	}

	// The migrator is not closed: closing its driver would close db.
	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RecordHandStart(ctx context.Context, hand game.HandContext) error {
	if err := s.ensureGame(ctx, s.db, hand); err != nil {
		return fmt.Errorf("failed to record game start: %w", err)
	}
	return nil
}

func (s *Store) RecordHandEnd(ctx context.Context, hand game.HandContext, final game.FinalStacks) error {
	r := NewHandRecord(hand, final)
	actions, err := json.Marshal(r.Actions)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.ensureGame(ctx, tx, hand); err != nil {
		return fmt.Errorf("failed to record game start: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
INSERT INTO hand_history (
    hand_id, game_id, hand_number, player_small_blind,
    player_start, opponent_start, player_final, opponent_final,
    pot, winner, folded, board, actions, started_at, ended_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.HandID.String(), r.GameID.String(), r.HandNumber, r.PlayerSmallBlind,
		r.StartStacks.Player, r.StartStacks.Opponent, r.FinalStacks.Player, r.FinalStacks.Opponent,
		r.Pot, r.Winner, r.Folded, r.Board, string(actions), r.StartedAt, r.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to record hand %d: %w", r.HandNumber, err)
	}

	var gameWinner sql.NullString
	if final.GameOver {
		gameWinner = sql.NullString{String: r.Winner, Valid: true}
	}
	_, err = tx.ExecContext(ctx, s.rebind(`
UPDATE game_history
SET final_chips = ?, profit_loss = ? - initial_chips, hands_played = ?, end_time = ?, winner = ?
WHERE game_id = ?`),
		r.FinalStacks.Player, r.FinalStacks.Player, r.HandNumber, r.EndedAt, gameWinner, r.GameID.String())
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ensureGame inserts the game row once. Initial chips come from whichever
// hand is recorded first, normally hand one.
func (s *Store) ensureGame(ctx context.Context, db execer, hand game.HandContext) error {
	_, err := db.ExecContext(ctx, s.rebind(`
INSERT INTO game_history (game_id, player_name, bot_level, small_blind, big_blind, initial_chips, start_time)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO NOTHING`),
		hand.GameID.String(), s.playerName, s.opponent, hand.SmallBlind, hand.BigBlind,
		hand.StartStacks.Player, hand.StartedAt.UTC())
	return err
}

// GameSummary is one row of game_history.
type GameSummary struct {
	GameID       uuid.UUID
	PlayerName   string
	Opponent     string
	SmallBlind   int
	BigBlind     int
	InitialChips int
	FinalChips   int
	ProfitLoss   int
	HandsPlayed  int
	Winner       string
	StartTime    time.Time
	EndTime      time.Time
}

// Finished reports whether the game reached game over.
func (g GameSummary) Finished() bool {
	return g.Winner != ""
}

// Games returns the most recent games first.
func (s *Store) Games(ctx context.Context, limit int) ([]GameSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT game_id, player_name, bot_level, small_blind, big_blind, initial_chips,
       final_chips, profit_loss, hands_played, winner, start_time, end_time
FROM game_history
ORDER BY start_time DESC
LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []GameSummary
	for rows.Next() {
		var (
			g                      GameSummary
			finalChips, profitLoss sql.NullInt64
			winner                 sql.NullString
			endTime                sql.NullTime
		)
		if err := rows.Scan(&g.GameID, &g.PlayerName, &g.Opponent, &g.SmallBlind, &g.BigBlind, &g.InitialChips,
			&finalChips, &profitLoss, &g.HandsPlayed, &winner, &g.StartTime, &endTime); err != nil {
			return nil, err
		}
		g.FinalChips = int(finalChips.Int64)
		g.ProfitLoss = int(profitLoss.Int64)
		g.Winner = winner.String
		g.EndTime = endTime.Time
		games = append(games, g)
	}
	return games, rows.Err()
}

// Hands returns the recorded hands of a game in order.
func (s *Store) Hands(ctx context.Context, gameID uuid.UUID) ([]HandRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT h.hand_id, h.hand_number, h.player_small_blind, g.small_blind, g.big_blind,
       h.player_start, h.opponent_start, h.player_final, h.opponent_final,
       h.pot, h.winner, h.folded, h.board, h.actions, h.started_at, h.ended_at
FROM hand_history h
JOIN game_history g ON g.game_id = h.game_id
WHERE h.game_id = ?
ORDER BY h.hand_number`), gameID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hands []HandRecord
	for rows.Next() {
		r := HandRecord{GameID: gameID}
		var actions []byte
		if err := rows.Scan(&r.HandID, &r.HandNumber, &r.PlayerSmallBlind, &r.SmallBlind, &r.BigBlind,
			&r.StartStacks.Player, &r.StartStacks.Opponent, &r.FinalStacks.Player, &r.FinalStacks.Opponent,
			&r.Pot, &r.Winner, &r.Folded, &r.Board, &actions, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &r.Actions); err != nil {
			return nil, fmt.Errorf("hand %d: bad actions: %w", r.HandNumber, err)
		}
		hands = append(hands, r)
	}
	return hands, rows.Err()
}

// rebind rewrites ? placeholders into the dialect's form.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
