package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shivavenkatesh/atomgraph/internal/cache"
	"github.com/shivavenkatesh/atomgraph/internal/graph"
	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/internal/store"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// serviceImpl implements the Service interface
type serviceImpl struct {
	store  store.Store
	cache  *cache.AtomCache
	config Config
	logger *zap.Logger
}

// NewService creates a new graph service
func NewService(st store.Store, cfg Config, logger *zap.Logger) Service {
	if cfg.Window <= 0 {
		cfg.Window = graph.DefaultWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.CacheSize < 0 {
		cfg.CacheSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &serviceImpl{
		store:  st,
		cache:  cache.NewAtomCache(cfg.CacheSize),
		config: cfg,
		logger: logger,
	}
}

// Split divides content into atoms with the requested strategy
func (s *serviceImpl) Split(ctx context.Context, req types.SplitRequest) (*types.SplitResponse, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := s.resolve(req.SplitOptions)
	sp, err := splitter.FromSplitOptions(opts)
	if err != nil {
		return nil, err
	}

	atoms, cached, err := s.splitText(sp, fingerprint(opts, sp.AtomSize()), req.Content)
	if err != nil {
		return nil, err
	}

	return &types.SplitResponse{
		Atoms:    atoms,
		Count:    len(atoms),
		Strategy: opts.Strategy,
		AtomSize: sp.AtomSize(),
		Cached:   cached,
		Timing:   time.Since(start).Milliseconds(),
	}, nil
}

// Build splits every payload, builds a proximity graph and stores it.
// Payloads are split concurrently by one shared splitter and inserted in
// request order, so the stored graph does not depend on scheduling.
func (s *serviceImpl) Build(ctx context.Context, req types.BuildRequest) (*types.GraphRecord, error) {
	start := time.Now()

	if len(req.Payloads) == 0 {
		return nil, fmt.Errorf("%w: at least one payload is required", splitter.ErrInvalidArgument)
	}

	opts := s.resolve(req.SplitOptions)
	sp, err := splitter.FromSplitOptions(opts)
	if err != nil {
		return nil, err
	}

	window := req.Window
	if window == 0 {
		window = s.config.Window
	}

	g, err := graph.New[string, string](sp, graph.StringKey,
		graph.WithWindow(window),
		graph.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	fp := fingerprint(opts, sp.AtomSize())
	results := make([][]string, len(req.Payloads))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.config.Workers)

	for i, payload := range req.Payloads {
		i, payload := i, payload
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			atoms, _, err := s.splitText(sp, fp, payload)
			if err != nil {
				return fmt.Errorf("payload %d: %w", i, err)
			}
			results[i] = atoms
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		s.logger.Warn("build aborted", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	for _, atoms := range results {
		wrapped := make([]types.Atom[string], len(atoms))
		for j, a := range atoms {
			wrapped[j] = types.NewAtom(a)
		}
		g.AddAtoms(wrapped)
	}

	record := toRecord(g, opts.Strategy)
	record.ID = uuid.New().String()
	record.Name = req.Name
	if record.Name == "" {
		record.Name = "graph-" + record.ID[:8]
	}
	record.CreatedAt = time.Now()

	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store graph: %w", err)
	}

	s.logger.Info("graph built",
		zap.String("id", record.ID),
		zap.String("name", record.Name),
		zap.String("strategy", record.Strategy),
		zap.Int("payloads", record.PayloadCount),
		zap.Int("nodes", len(record.Nodes)),
		zap.Int("edges", len(record.Edges)),
		zap.Duration("took", time.Since(start)),
	)

	return record, nil
}

// Index reads a file or directory into payloads and builds a graph from them
func (s *serviceImpl) Index(ctx context.Context, req types.IndexRequest) (*types.GraphRecord, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("%w: path is required", splitter.ErrInvalidArgument)
	}

	// Expand ~ to home directory
	path := req.Path
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = s.collectFiles(ctx, path)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	payloads := make([]string, 0, len(files))
	for _, file := range files {
		content, err := s.readPayload(file)
		if err != nil {
			if !info.IsDir() {
				return nil, err
			}
			// Log error but continue indexing other files
			s.logger.Warn("skipping file", zap.String("path", file), zap.Error(err))
			continue
		}
		payloads = append(payloads, content)
	}

	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: no indexable files under %s", splitter.ErrInvalidArgument, path)
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(path)
	}

	s.logger.Debug("indexing", zap.String("path", path), zap.Int("files", len(payloads)))

	return s.Build(ctx, types.BuildRequest{
		Name:         name,
		Payloads:     payloads,
		Window:       req.Window,
		SplitOptions: req.SplitOptions,
	})
}

// Get retrieves a stored graph by ID
func (s *serviceImpl) Get(ctx context.Context, id string) (*types.GraphRecord, error) {
	return s.store.Get(ctx, id)
}

// Delete removes a stored graph by ID
func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// List returns graph summaries with filtering
func (s *serviceImpl) List(ctx context.Context, opts store.ListOptions) ([]types.GraphSummary, error) {
	return s.store.List(ctx, opts)
}

// Stats returns system statistics
func (s *serviceImpl) Stats(ctx context.Context) (*types.StatsResponse, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.CacheHits, stats.CacheMisses, _ = s.cache.Stats()
	stats.CacheEntries = s.cache.Len()
	stats.CacheEvictions = s.cache.Evictions()
	return stats, nil
}

// Close releases resources
func (s *serviceImpl) Close() error {
	return s.store.Close()
}

// splitText splits content, consulting the cache first
func (s *serviceImpl) splitText(sp splitter.Splitter[string, string], fp, content string) ([]string, bool, error) {
	if atoms, ok := s.cache.Get(fp, content); ok {
		return atoms, true, nil
	}

	parts, err := sp.Split(types.NewPayload(content))
	if err != nil {
		return nil, false, err
	}

	atoms := make([]string, len(parts))
	for i, p := range parts {
		atoms[i] = p.Data
	}
	s.cache.Put(fp, content, atoms)

	return atoms, false, nil
}

// resolve fills unset request options from the configured defaults
func (s *serviceImpl) resolve(req types.SplitOptions) types.SplitOptions {
	def := s.config.Split
	out := req

	if out.Strategy == "" {
		out.Strategy = def.Strategy
	}
	if out.Strategy == "" {
		out.Strategy = splitter.DefaultStrategy
	}
	out.Strategy = strings.ToLower(strings.TrimSpace(out.Strategy))

	// Size-like defaults only carry over when the strategy matches
	if out.Strategy == strings.ToLower(def.Strategy) {
		if out.AtomSize == nil {
			out.AtomSize = def.AtomSize
		}
		if out.Step == 0 {
			out.Step = def.Step
		}
		if out.Overlap == 0 {
			out.Overlap = def.Overlap
		}
		if out.Remainder == "" {
			out.Remainder = def.Remainder
		}
		if out.Stem == "" {
			out.Stem = def.Stem
		}
		if len(out.Separators) == 0 {
			out.Separators = def.Separators
		}
	}

	return out
}

// fingerprint identifies a splitter configuration for caching
func fingerprint(opts types.SplitOptions, atomSize uint) string {
	return fmt.Sprintf("%s|%d|%s|%d|%s|%d|%q",
		opts.Strategy, atomSize, opts.Remainder, opts.Step, opts.Stem, opts.Overlap, opts.Separators)
}

// toRecord converts an in-memory graph into its persisted form
func toRecord(g *graph.Graph[string, string], strategy string) *types.GraphRecord {
	nodes := g.Nodes()
	edges := g.Edges()

	record := &types.GraphRecord{
		Strategy:     strategy,
		AtomSize:     g.Splitter().AtomSize(),
		Window:       g.Window(),
		PayloadCount: g.Payloads(),
		Nodes:        make([]types.NodeRecord, len(nodes)),
		Edges:        make([]types.EdgeRecord, len(edges)),
	}

	for i, n := range nodes {
		record.Nodes[i] = types.NodeRecord{
			Key:         n.Key,
			Content:     n.Atom.Data,
			Occurrences: n.Occurrences,
			Payloads:    n.Payloads.ToArray(),
		}
	}
	for i, e := range edges {
		record.Edges[i] = types.EdgeRecord{From: e.From, To: e.To, Weight: e.Weight}
	}

	return record
}
