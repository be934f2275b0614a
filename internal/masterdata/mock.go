package masterdata

import (
	"context"
)

// MockSource is a test implementation of Source.
type MockSource struct {
	ListServiceTypesFunc func(ctx context.Context, search string) ([]Record, error)
	ListBlocksFunc       func(ctx context.Context, search string) ([]Record, error)
	ListRoadsFunc        func(ctx context.Context, blockID int64, search string) ([]Record, error)
	ListBuildingsFunc    func(ctx context.Context, roadID, blockID int64, search string) ([]Record, error)
}

// ListServiceTypes delegates to the configured function or returns an empty list.
func (m *MockSource) ListServiceTypes(ctx context.Context, search string) ([]Record, error) {
	if m.ListServiceTypesFunc != nil {
		return m.ListServiceTypesFunc(ctx, search)
	}
	return nil, nil
}

// ListBlocks delegates to the configured function or returns an empty list.
func (m *MockSource) ListBlocks(ctx context.Context, search string) ([]Record, error) {
	if m.ListBlocksFunc != nil {
		return m.ListBlocksFunc(ctx, search)
	}
	return nil, nil
}

// ListRoads delegates to the configured function or returns an empty list.
func (m *MockSource) ListRoads(ctx context.Context, blockID int64, search string) ([]Record, error) {
	if m.ListRoadsFunc != nil {
		return m.ListRoadsFunc(ctx, blockID, search)
	}
	return nil, nil
}

// ListBuildings delegates to the configured function or returns an empty list.
func (m *MockSource) ListBuildings(ctx context.Context, roadID, blockID int64, search string) ([]Record, error) {
	if m.ListBuildingsFunc != nil {
		return m.ListBuildingsFunc(ctx, roadID, blockID, search)
	}
	return nil, nil
}
