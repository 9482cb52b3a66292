// Package service provides the graph building service
package service

import (
	"context"

	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/internal/store"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Service orchestrates splitting and graph operations
type Service interface {
	// Split divides content into atoms with the requested strategy
	Split(ctx context.Context, req types.SplitRequest) (*types.SplitResponse, error)

	// Build splits every payload, builds a proximity graph and stores it
	Build(ctx context.Context, req types.BuildRequest) (*types.GraphRecord, error)

	// Index reads a file or directory into payloads and builds a graph from them
	Index(ctx context.Context, req types.IndexRequest) (*types.GraphRecord, error)

	// Get retrieves a stored graph by ID
	Get(ctx context.Context, id string) (*types.GraphRecord, error)

	// Delete removes a stored graph by ID
	Delete(ctx context.Context, id string) error

	// List returns graph summaries with filtering
	List(ctx context.Context, opts store.ListOptions) ([]types.GraphSummary, error)

	// Stats returns system statistics
	Stats(ctx context.Context) (*types.StatsResponse, error)

	// Close releases resources
	Close() error
}

// Config configures the graph service
type Config struct {
	Split     types.SplitOptions // Defaults for requests that leave options unset
	Window    int                // Default edge window
	Workers   int                // Concurrent splits per build
	CacheSize int                // Split results to memoise, 0 disables

	// Indexing
	IndexIgnore     []string // Glob patterns to ignore during indexing
	IndexExtensions []string // Extensions to index, empty means the built-in text set
	MaxFileBytes    int64    // Larger files are skipped, 0 means no limit
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Split:        types.SplitOptions{Strategy: splitter.DefaultStrategy},
		Window:       1,
		Workers:      4,
		CacheSize:    1000,
		IndexIgnore:  []string{".git", "node_modules", "vendor", "__pycache__", ".venv"},
		MaxFileBytes: 4 * 1024 * 1024,
	}
}
