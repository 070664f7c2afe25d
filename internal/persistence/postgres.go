package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/user/corporate-warfare/internal/types"
)

// Schema is applied once at startup; snapshots are stored as JSONB so
// the engine stays the single source of truth for state shape.
const Schema = `
CREATE SCHEMA IF NOT EXISTS game;

CREATE TABLE IF NOT EXISTS game.snapshots (
	id       BIGSERIAL PRIMARY KEY,
	room_id  TEXT NOT NULL,
	turn     BIGINT NOT NULL,
	payload  JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS snapshots_room_turn ON game.snapshots (room_id, turn DESC);

CREATE TABLE IF NOT EXISTS game.actions (
	id          BIGSERIAL PRIMARY KEY,
	room_id     TEXT NOT NULL,
	actor_id    TEXT NOT NULL,
	action_type TEXT NOT NULL,
	payload     JSONB,
	turn        BIGINT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game.results (
	room_id      TEXT PRIMARY KEY,
	winner_id    TEXT,
	reason       TEXT NOT NULL,
	status       TEXT NOT NULL,
	final_turn   BIGINT NOT NULL,
	payload      JSONB NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Connect opens a pgx pool against the given database URL
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// PostgresStore persists snapshots, actions and results in Postgres
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore wraps an existing pool and ensures the schema exists
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// SaveSnapshot inserts the snapshot payload for a room
func (s *PostgresStore) SaveSnapshot(ctx context.Context, roomID string, snapshot *types.WorldSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game.snapshots (room_id, turn, payload)
		VALUES ($1, $2, $3)
	`, roomID, snapshot.Turn, payload)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LoadLatestSnapshot returns the most recent snapshot for a room
func (s *PostgresStore) LoadLatestSnapshot(ctx context.Context, roomID string) (*types.WorldSnapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload
		FROM game.snapshots
		WHERE room_id = $1
		ORDER BY turn DESC, id DESC
		LIMIT 1
	`, roomID).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no snapshot for room %s", roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var snapshot types.WorldSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snapshot, nil
}

// RecordAction inserts one action record
func (s *PostgresStore) RecordAction(ctx context.Context, roomID, actorID, actionType string, payload any, turn int64) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal action payload: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game.actions (room_id, actor_id, action_type, payload, turn)
		VALUES ($1, $2, $3, $4, $5)
	`, roomID, actorID, actionType, encoded, turn)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// CompleteGame upserts the final result for a room
func (s *PostgresStore) CompleteGame(ctx context.Context, roomID string, result *types.GameResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game.results (room_id, winner_id, reason, status, final_turn, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (room_id) DO UPDATE
		SET winner_id = EXCLUDED.winner_id,
		    reason = EXCLUDED.reason,
		    status = EXCLUDED.status,
		    final_turn = EXCLUDED.final_turn,
		    payload = EXCLUDED.payload,
		    completed_at = now()
	`, roomID, result.WinnerID, result.Reason, string(result.Status), result.FinalTurn, payload)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}
