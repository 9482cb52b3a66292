// Package store defines the graph storage interface
package store

import (
	"context"
	"errors"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// ErrNotFound is returned when a graph does not exist
var ErrNotFound = errors.New("graph not found")

// Store handles persistence of proximity graphs
type Store interface {
	// Save persists a graph with all of its nodes and edges
	Save(ctx context.Context, graph *types.GraphRecord) error

	// Get retrieves a graph with its nodes and edges by ID
	Get(ctx context.Context, id string) (*types.GraphRecord, error)

	// List returns graph summaries with filtering and pagination
	List(ctx context.Context, opts ListOptions) ([]types.GraphSummary, error)

	// Delete removes a graph and its nodes and edges
	Delete(ctx context.Context, id string) error

	// Count returns the number of graphs, optionally filtered by strategy
	Count(ctx context.Context, strategy string) (int, error)

	// Stats returns storage statistics
	Stats(ctx context.Context) (*types.StatsResponse, error)

	// Close releases resources
	Close() error

	// Compact optimizes storage (VACUUM)
	Compact(ctx context.Context) error
}

// ListOptions configures listing queries
type ListOptions struct {
	Strategy   string
	Name       string // Exact name match
	Limit      int
	Offset     int
	OrderBy    string // "created_at", "name", "payload_count"
	Descending bool
}
