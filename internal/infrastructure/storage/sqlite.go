package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"svw.info/tambola/internal/codec"
	"svw.info/tambola/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS tickets (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL DEFAULT '',
	player_id  TEXT NOT NULL DEFAULT '',
	seed       INTEGER NOT NULL DEFAULT 0,
	grid       BLOB NOT NULL,
	struck     TEXT NOT NULL DEFAULT '[]',
	is_winner  INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT 0
)`

// SQLite stores tickets in a single table; grids are CBOR blobs.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// database/sql pools connections; the sqlite file allows one writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Save(ctx context.Context, t *domain.Ticket) error {
	if t == nil || !validID(t.ID) {
		return ErrInvalidTicket
	}
	grid, err := codec.EncodeGrid(&t.Grid)
	if err != nil {
		return err
	}
	struck := t.Struck
	if struck == nil {
		struck = []int{}
	}
	sb, err := json.Marshal(struck)
	if err != nil {
		return err
	}
	winner := 0
	if t.IsWinner {
		winner = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tickets (id, session_id, player_id, seed, grid, struck, is_winner, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			player_id  = excluded.player_id,
			seed       = excluded.seed,
			grid       = excluded.grid,
			struck     = excluded.struck,
			is_winner  = excluded.is_winner,
			created_at = excluded.created_at`,
		t.ID, t.SessionID, t.PlayerID, t.Seed, grid, string(sb), winner, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("save ticket %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, id string) (*domain.Ticket, error) {
	var (
		t      domain.Ticket
		grid   []byte
		struck string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, player_id, seed, grid, struck, is_winner, created_at
		FROM tickets WHERE id = ?`, id).
		Scan(&t.ID, &t.SessionID, &t.PlayerID, &t.Seed, &grid, &struck, &t.IsWinner, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", id, err)
	}
	if t.Grid, err = codec.DecodeGrid(grid); err != nil {
		return nil, fmt.Errorf("load ticket %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(struck), &t.Struck); err != nil {
		return nil, fmt.Errorf("load ticket %s: struck: %w", id, err)
	}
	return &t, nil
}

func (s *SQLite) List(ctx context.Context) ([]domain.TicketMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, player_id, struck, created_at
		FROM tickets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []domain.TicketMeta
	for rows.Next() {
		var (
			m      domain.TicketMeta
			struck string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.PlayerID, &struck, &m.CreatedAt); err != nil {
			return nil, err
		}
		var nums []int
		if err := json.Unmarshal([]byte(struck), &nums); err == nil {
			m.Struck = len(nums)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
