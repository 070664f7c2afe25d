package interfaces

import (
	"context"

	"github.com/user/corporate-warfare/internal/types"
)

// Notification severity levels understood by every Notifier
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Notifier defines the interface for pushing human-readable event strings
// to whatever UI is listening. Engine correctness never depends on it.
type Notifier interface {
	Notify(level, message string)
}

// InferenceClient defines the interface for the external AI decision
// backend. Implementations must honor the context deadline; the engine
// falls back locally on any error.
type InferenceClient interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// SnapshotStore defines the interface for opportunistic persistence.
// The simulation keeps running in memory when any call fails.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, roomID string, snapshot *types.WorldSnapshot) error
	LoadLatestSnapshot(ctx context.Context, roomID string) (*types.WorldSnapshot, error)
	RecordAction(ctx context.Context, roomID, actorID, actionType string, payload any, turn int64) error
	CompleteGame(ctx context.Context, roomID string, result *types.GameResult) error
}
