// Package sqlite provides the SQLite graph storage implementation
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shivavenkatesh/atomgraph/internal/store"
	"github.com/shivavenkatesh/atomgraph/pkg/types"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements store.Store using SQLite
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// Config configures the SQLite store
type Config struct {
	Path string // Path to database file
}

// New creates a new SQLite store
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("database path is required")
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA cache_size = -32000",       // 32MB cache
		"PRAGMA temp_store = MEMORY",       // temp tables in memory
		"PRAGMA mmap_size = 268435456",     // 256MB mmap
		"PRAGMA page_size = 4096",          // optimal for SSD
		"PRAGMA auto_vacuum = INCREMENTAL", // gradual space reclaim
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{
		db:   db,
		path: cfg.Path,
	}

	// Initialize schema
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the database tables
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS graphs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		strategy TEXT NOT NULL,
		atom_size INTEGER NOT NULL,
		edge_window INTEGER NOT NULL,
		payload_count INTEGER NOT NULL,
		node_count INTEGER NOT NULL,
		edge_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- position keeps first-seen order, payloads is a portable roaring bitmap
	CREATE TABLE IF NOT EXISTS nodes (
		graph_id TEXT NOT NULL,
		key INTEGER NOT NULL,
		position INTEGER NOT NULL,
		content TEXT NOT NULL,
		occurrences INTEGER NOT NULL,
		payloads BLOB,
		PRIMARY KEY (graph_id, key)
	);

	CREATE TABLE IF NOT EXISTS edges (
		graph_id TEXT NOT NULL,
		src INTEGER NOT NULL,
		dst INTEGER NOT NULL,
		weight INTEGER NOT NULL,
		PRIMARY KEY (graph_id, src, dst)
	);

	CREATE INDEX IF NOT EXISTS idx_graphs_strategy ON graphs(strategy);
	CREATE INDEX IF NOT EXISTS idx_graphs_name ON graphs(name);
	CREATE INDEX IF NOT EXISTS idx_graphs_created_at ON graphs(created_at);
	CREATE INDEX IF NOT EXISTS idx_nodes_position ON nodes(graph_id, position);

	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save persists a graph in a single transaction
func (s *Store) Save(ctx context.Context, graph *types.GraphRecord) error {
	if graph == nil || graph.ID == "" {
		return errors.New("graph id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if graph.CreatedAt.IsZero() {
		graph.CreatedAt = time.Now()
	}
	graph.CreatedAt = graph.CreatedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO graphs (id, name, strategy, atom_size, edge_window, payload_count, node_count, edge_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		graph.ID,
		graph.Name,
		graph.Strategy,
		int64(graph.AtomSize),
		graph.Window,
		graph.PayloadCount,
		len(graph.Nodes),
		len(graph.Edges),
		graph.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert graph: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (graph_id, key, position, content, occurrences, payloads)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	for i, node := range graph.Nodes {
		payloads, err := encodePayloads(node.Payloads)
		if err != nil {
			return err
		}
		_, err = nodeStmt.ExecContext(ctx, graph.ID, keyToInt64(node.Key), i, node.Content, node.Occurrences, payloads)
		if err != nil {
			return fmt.Errorf("failed to insert node %d: %w", node.Key, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (graph_id, src, dst, weight) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}
	defer edgeStmt.Close()

	for _, edge := range graph.Edges {
		_, err = edgeStmt.ExecContext(ctx, graph.ID, keyToInt64(edge.From), keyToInt64(edge.To), edge.Weight)
		if err != nil {
			return fmt.Errorf("failed to insert edge %d->%d: %w", edge.From, edge.To, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a graph with its nodes and edges
func (s *Store) Get(ctx context.Context, id string) (*types.GraphRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var g types.GraphRecord
	var atomSize int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, strategy, atom_size, edge_window, payload_count, created_at
		FROM graphs WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.Strategy, &atomSize, &g.Window, &g.PayloadCount, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}
	g.AtomSize = uint(atomSize)

	if g.Nodes, err = s.loadNodes(ctx, id); err != nil {
		return nil, err
	}
	if g.Edges, err = s.loadEdges(ctx, id); err != nil {
		return nil, err
	}

	return &g, nil
}

func (s *Store) loadNodes(ctx context.Context, id string) ([]types.NodeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, content, occurrences, payloads
		FROM nodes WHERE graph_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer rows.Close()

	nodes := []types.NodeRecord{}
	for rows.Next() {
		var n types.NodeRecord
		var key int64
		var payloads []byte
		if err := rows.Scan(&key, &n.Content, &n.Occurrences, &payloads); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Key = int64ToKey(key)
		if n.Payloads, err = decodePayloads(payloads); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	return nodes, rows.Err()
}

func (s *Store) loadEdges(ctx context.Context, id string) ([]types.EdgeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT src, dst, weight FROM edges WHERE graph_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	edges := []types.EdgeRecord{}
	for rows.Next() {
		var e types.EdgeRecord
		var src, dst int64
		if err := rows.Scan(&src, &dst, &e.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.From = int64ToKey(src)
		e.To = int64ToKey(dst)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// SQLite orders the signed column, callers expect unsigned key order
	sortEdges(edges)
	return edges, nil
}

// List returns graph summaries with filtering and pagination
func (s *Store) List(ctx context.Context, opts store.ListOptions) ([]types.GraphSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conditions := []string{"1=1"}
	args := []interface{}{}

	if opts.Strategy != "" {
		conditions = append(conditions, "strategy = ?")
		args = append(args, opts.Strategy)
	}
	if opts.Name != "" {
		conditions = append(conditions, "name = ?")
		args = append(args, opts.Name)
	}

	order := "ASC"
	if opts.Descending {
		order = "DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT id, name, strategy, atom_size, edge_window, payload_count, node_count, edge_count, created_at
		FROM graphs
		WHERE %s
		ORDER BY %s %s, id ASC
		LIMIT ? OFFSET ?
	`, strings.Join(conditions, " AND "), orderColumn(opts.OrderBy), order)

	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	defer rows.Close()

	summaries := []types.GraphSummary{}
	for rows.Next() {
		var g types.GraphSummary
		var atomSize int64
		err := rows.Scan(&g.ID, &g.Name, &g.Strategy, &atomSize, &g.Window,
			&g.PayloadCount, &g.NodeCount, &g.EdgeCount, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		g.AtomSize = uint(atomSize)
		summaries = append(summaries, g)
	}

	return summaries, rows.Err()
}

// Delete removes a graph and everything it owns
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM graphs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete graph: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE graph_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM edges WHERE graph_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete edges: %w", err)
	}

	return tx.Commit()
}

// Count returns the number of graphs
func (s *Store) Count(ctx context.Context, strategy string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	var err error

	if strategy == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM graphs").Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM graphs WHERE strategy = ?", strategy).Scan(&count)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to count graphs: %w", err)
	}

	return count, nil
}

// Stats returns storage statistics
func (s *Store) Stats(ctx context.Context) (*types.StatsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &types.StatsResponse{
		GraphsByStrategy: make(map[string]int),
	}

	// Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(node_count), 0), COALESCE(SUM(edge_count), 0) FROM graphs
	`).Scan(&stats.TotalGraphs, &stats.TotalNodes, &stats.TotalEdges)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	// Count by strategy
	rows, err := s.db.QueryContext(ctx, "SELECT strategy, COUNT(*) FROM graphs GROUP BY strategy")
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var strategy string
		var count int
		if err := rows.Scan(&strategy, &count); err != nil {
			return nil, fmt.Errorf("failed to scan strategy count: %w", err)
		}
		stats.GraphsByStrategy[strategy] = count
	}

	// Storage size
	if info, err := os.Stat(s.path); err == nil {
		stats.StorageBytes = info.Size()
	}

	return stats, nil
}

// Close releases resources
func (s *Store) Close() error {
	return s.db.Close()
}

// Compact optimizes storage
func (s *Store) Compact(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}
