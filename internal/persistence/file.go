// Package persistence implements the snapshot store collaborators: a
// JSON file store used by default and a Postgres store for durable
// deployments. The simulation treats both as best-effort.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/corporate-warfare/internal/types"
)

// FileStore persists snapshots and action records as JSON files under a
// base directory, one set of files per room
type FileStore struct {
	baseDir string
	mu      sync.Mutex
}

// NewFileStore creates a file store rooted at baseDir
func NewFileStore(baseDir string) *FileStore {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		baseDir = "./data"
	}
	return &FileStore{baseDir: baseDir}
}

// SaveSnapshot writes the latest snapshot for a room
func (s *FileStore) SaveSnapshot(ctx context.Context, roomID string, snapshot *types.WorldSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(roomID, "snapshot.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create room directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// LoadLatestSnapshot reads back the last saved snapshot for a room
func (s *FileStore) LoadLatestSnapshot(ctx context.Context, roomID string) (*types.WorldSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(roomID, "snapshot.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot types.WorldSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snapshot.Companies == nil {
		snapshot.Companies = make(map[string]*types.Company)
	}
	if snapshot.Buildings == nil {
		snapshot.Buildings = make(map[string]*types.Building)
	}
	if snapshot.Agents == nil {
		snapshot.Agents = make(map[string]*types.Agent)
	}
	if snapshot.Market == nil {
		snapshot.Market = types.NewMarketState()
	}
	return &snapshot, nil
}

type actionRecord struct {
	ActorID    string    `json:"actor_id"`
	ActionType string    `json:"action_type"`
	Payload    any       `json:"payload,omitempty"`
	Turn       int64     `json:"turn"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RecordAction appends one action record to the room's JSON-lines log
func (s *FileStore) RecordAction(ctx context.Context, roomID, actorID, actionType string, payload any, turn int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(roomID, "actions.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create room directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open action log: %w", err)
	}
	defer file.Close()

	record := actionRecord{
		ActorID:    actorID,
		ActionType: actionType,
		Payload:    payload,
		Turn:       turn,
		RecordedAt: time.Now(),
	}
	if err := json.NewEncoder(file).Encode(record); err != nil {
		return fmt.Errorf("failed to append action record: %w", err)
	}
	return nil
}

// CompleteGame writes the final results file for a room
func (s *FileStore) CompleteGame(ctx context.Context, roomID string, result *types.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(roomID, "result.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create room directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func (s *FileStore) path(roomID, name string) string {
	return filepath.Join(s.baseDir, roomID, name)
}
