package room

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/corporate-warfare/internal/types"
)

// DataLoader handles loading seed catalogs from files
type DataLoader struct {
	basePath string
}

// NewDataLoader creates a new data loader
func NewDataLoader(basePath string) *DataLoader {
	return &DataLoader{
		basePath: basePath,
	}
}

// LoadBuildings loads the building roster from file
func (dl *DataLoader) LoadBuildings() ([]*types.Building, error) {
	path := filepath.Join(dl.basePath, "buildings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read buildings file: %w", err)
	}

	var buildings []*types.Building
	if err := json.Unmarshal(data, &buildings); err != nil {
		return nil, fmt.Errorf("failed to parse buildings data: %w", err)
	}

	return buildings, nil
}

// LoadStocks loads the instrument catalog from file
func (dl *DataLoader) LoadStocks() ([]*types.Stock, error) {
	path := filepath.Join(dl.basePath, "stocks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stocks file: %w", err)
	}

	var stocks []*types.Stock
	if err := json.Unmarshal(data, &stocks); err != nil {
		return nil, fmt.Errorf("failed to parse stocks data: %w", err)
	}

	return stocks, nil
}
