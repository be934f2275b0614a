// Package masterdata resolves human-readable block, road and building
// numbers to the courier's internal identifiers using its live master
// data catalog.
package masterdata

import (
	"context"
)

// Record is one entry in the courier's master data catalog.
// Code carries the authoritative human-readable number as a string;
// Name is the display name and may embed the number and an area name.
type Record struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Source lists the courier's master data. Implementations query the
// courier API; tests use MockSource.
type Source interface {
	// ListServiceTypes returns the available delivery service types.
	ListServiceTypes(ctx context.Context, search string) ([]Record, error)

	// ListBlocks returns blocks, optionally filtered by a search term.
	ListBlocks(ctx context.Context, search string) ([]Record, error)

	// ListRoads returns roads within a block.
	ListRoads(ctx context.Context, blockID int64, search string) ([]Record, error)

	// ListBuildings returns buildings on a road within a block.
	ListBuildings(ctx context.Context, roadID, blockID int64, search string) ([]Record, error)
}
