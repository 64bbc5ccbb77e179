// Package db persists finished games to sqlite.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sidestacker/sidestacker/game"
	"github.com/sidestacker/sidestacker/logger"
	"github.com/sidestacker/sidestacker/protocol"
)

//go:embed db_schema.sql
var ddl string

type DB struct {
	db *sql.DB
}

// Game is a finished game as stored.
type Game struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Winner     game.Player
	Turns      []protocol.Turn
}

// Open opens the sqlite database at filename and applies the schema.
// The file may be the zero-length file left by the bootstrap; the
// schema statements are all IF NOT EXISTS.
func Open(filename string) (*DB, error) {
	ctx := context.Background()

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema to '%s': %w", filename, err)
	}

	if fi, err := os.Stat(filename); err == nil {
		logger.New("db").Printf("opened %s (%s)", filename, humanize.Bytes(uint64(fi.Size())))
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// SaveGame stores a finished game. A fresh id is assigned when the
// game doesn't carry one.
func (db *DB) SaveGame(ctx context.Context, g *Game) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	turns, err := json.Marshal(g.Turns)
	if err != nil {
		return fmt.Errorf("encoding turns: %w", err)
	}

	var winner string
	if g.Winner != game.NoPlayer {
		winner = g.Winner.String()
	}

	if _, err := db.db.ExecContext(ctx,
		`INSERT INTO games (id, started_at, finished_at, winner, turns) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.StartedAt.Unix(), g.FinishedAt.Unix(), winner, string(turns),
	); err != nil {
		return fmt.Errorf("inserting game '%s': %w", g.ID, err)
	}
	return nil
}

// ListGames returns up to limit games, most recently finished first.
func (db *DB) ListGames(ctx context.Context, limit int) ([]*Game, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, winner, turns FROM games ORDER BY finished_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetGame fetches a single game by id.
func (db *DB) GetGame(ctx context.Context, id string) (*Game, error) {
	row := db.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, winner, turns FROM games WHERE id = ?`, id)
	g, err := scanGame(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no game '%s'", id)
	} else if err != nil {
		return nil, err
	}
	return g, nil
}

func scanGame(scan func(...any) error) (*Game, error) {
	var (
		g                 Game
		started, finished int64
		winner, turns     string
	)
	if err := scan(&g.ID, &started, &finished, &winner, &turns); err != nil {
		return nil, err
	}
	g.StartedAt = time.Unix(started, 0)
	g.FinishedAt = time.Unix(finished, 0)
	switch winner {
	case game.First.String():
		g.Winner = game.First
	case game.Second.String():
		g.Winner = game.Second
	}
	if err := json.Unmarshal([]byte(turns), &g.Turns); err != nil {
		return nil, fmt.Errorf("decoding turns: %w", err)
	}
	return &g, nil
}
