package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists artifact metadata in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			guest_id TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			persona1 TEXT NOT NULL,
			persona2 TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL,
			description TEXT NOT NULL,
			script TEXT NOT NULL,
			turns INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			degradations JSONB NOT NULL DEFAULT '[]'::jsonb,
			audio_key TEXT NOT NULL,
			audio_bytes INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_guest_created ON artifacts (guest_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

const selectColumns = `id, guest_id, mode, persona1, persona2, language, description, script,
	turns, duration_ms, degraded, degradations, audio_key, audio_bytes, created_at`

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	degradations, err := json.Marshal(rec.Degradations)
	if err != nil {
		return fmt.Errorf("encode degradations: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO artifacts (`+selectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO UPDATE SET script = EXCLUDED.script, degraded = EXCLUDED.degraded,
		   degradations = EXCLUDED.degradations, audio_key = EXCLUDED.audio_key, audio_bytes = EXCLUDED.audio_bytes`,
		rec.ID,
		rec.GuestID,
		rec.Mode,
		rec.Persona1,
		rec.Persona2,
		rec.Language,
		rec.Description,
		rec.Script,
		rec.Turns,
		rec.DurationMS,
		rec.Degraded,
		degradations,
		rec.AudioKey,
		rec.AudioBytes,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM artifacts WHERE id=$1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get artifact: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Recent(ctx context.Context, guestID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM artifacts WHERE guest_id=$1 ORDER BY created_at DESC LIMIT $2`,
		guestID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent artifacts: %w", err)
	}
	defer rows.Close()

	items := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact row: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifact rows: %w", err)
	}
	return items, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		r            Record
		degradations []byte
	)
	err := row.Scan(&r.ID, &r.GuestID, &r.Mode, &r.Persona1, &r.Persona2, &r.Language, &r.Description, &r.Script,
		&r.Turns, &r.DurationMS, &r.Degraded, &degradations, &r.AudioKey, &r.AudioBytes, &r.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	if len(degradations) > 0 {
		if err := json.Unmarshal(degradations, &r.Degradations); err != nil {
			return Record{}, fmt.Errorf("decode degradations: %w", err)
		}
	}
	return r, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
