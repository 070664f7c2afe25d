package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/corporate-warfare/internal/types"
)

func testSnapshot() *types.WorldSnapshot {
	snap := types.NewWorldSnapshot()
	snap.Turn = 123
	snap.Companies["player"] = &types.Company{
		ID: "player", Name: "Player Corp", Capital: 850_000,
		PlayerControlled: true, Status: types.CompanyActive,
		OwnedBuildings: []string{"tower"},
	}
	snap.Buildings["tower"] = &types.Building{
		ID: "tower", Name: "Downtown Tower", Level: 2, Income: 2_000, OwnerID: "player",
	}
	snap.Market.Stocks["APEX"] = &types.Stock{Symbol: "APEX", Price: 101.5, PreviousPrice: 100}
	return snap
}

func TestFileStoreSnapshotRoundtrip(t *testing.T) {
	// Setup
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	err := store.SaveSnapshot(ctx, "room-1", testSnapshot())
	assert.NoError(t, err)

	loaded, err := store.LoadLatestSnapshot(ctx, "room-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(123), loaded.Turn)
	assert.Equal(t, int64(850_000), loaded.Companies["player"].Capital)
	assert.Equal(t, "player", loaded.Buildings["tower"].OwnerID)
	assert.Equal(t, 101.5, loaded.Market.Stocks["APEX"].Price)
}

func TestFileStoreLoadMissingRoom(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.LoadLatestSnapshot(context.Background(), "nope")
	assert.Error(t, err)
}

func TestFileStoreRecordActionAppends(t *testing.T) {
	// Setup
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	assert.NoError(t, store.RecordAction(ctx, "room-1", "player", "purchase", map[string]string{"building": "tower"}, 10))
	assert.NoError(t, store.RecordAction(ctx, "room-1", "rival", "attack", nil, 11))

	data, err := os.ReadFile(filepath.Join(dir, "room-1", "actions.jsonl"))
	assert.NoError(t, err)

	// Each line is one standalone JSON object
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)

	var first actionRecord
	assert.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "player", first.ActorID)
	assert.Equal(t, "purchase", first.ActionType)
	assert.Equal(t, int64(10), first.Turn)

	var second actionRecord
	assert.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "rival", second.ActorID)
}

func TestFileStoreCompleteGame(t *testing.T) {
	// Setup
	dir := t.TempDir()
	store := NewFileStore(dir)

	result := &types.GameResult{
		WinnerID:  "player",
		Reason:    "eliminated all competitors",
		Status:    types.GameVictory,
		FinalTurn: 900,
	}
	assert.NoError(t, store.CompleteGame(context.Background(), "room-1", result))

	data, err := os.ReadFile(filepath.Join(dir, "room-1", "result.json"))
	assert.NoError(t, err)

	var loaded types.GameResult
	assert.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "player", loaded.WinnerID)
	assert.Equal(t, types.GameVictory, loaded.Status)
	assert.Equal(t, int64(900), loaded.FinalTurn)
}
