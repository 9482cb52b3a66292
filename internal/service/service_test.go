package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/internal/store"
	"github.com/shivavenkatesh/atomgraph/internal/store/sqlite"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

func newTestService(t *testing.T, mutate func(*Config)) (Service, store.Store) {
	t.Helper()

	st, err := sqlite.New(sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	svc := NewService(st, cfg, nil)
	t.Cleanup(func() { svc.Close() })
	return svc, st
}

func uintPtr(n uint) *uint { return &n }

func TestService_Split(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	resp, err := svc.Split(ctx, types.SplitRequest{Content: "abcd"})
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "bcd"}, resp.Atoms)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, splitter.StrategyNGrams, resp.Strategy)
	assert.Equal(t, uint(3), resp.AtomSize)
	assert.False(t, resp.Cached)

	again, err := svc.Split(ctx, types.SplitRequest{Content: "abcd"})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, resp.Atoms, again.Atoms)

	// A different configuration is a different cache entry
	other, err := svc.Split(ctx, types.SplitRequest{
		Content:      "abcd",
		SplitOptions: types.SplitOptions{AtomSize: uintPtr(2)},
	})
	require.NoError(t, err)
	assert.False(t, other.Cached)
	assert.Equal(t, []string{"ab", "bc", "cd"}, other.Atoms)
}

func TestService_Split_Errors(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Split(ctx, types.SplitRequest{
		Content:      "abc",
		SplitOptions: types.SplitOptions{Strategy: "semantic"},
	})
	require.ErrorIs(t, err, splitter.ErrInvalidConfiguration)

	_, err = svc.Split(ctx, types.SplitRequest{
		Content:      "ABCDEFGH",
		SplitOptions: types.SplitOptions{Strategy: "chunks", Remainder: "strict"},
	})
	require.ErrorIs(t, err, splitter.ErrMalformedPayload)

	_, err = svc.Split(ctx, types.SplitRequest{
		Content:      "abc",
		SplitOptions: types.SplitOptions{AtomSize: uintPtr(0)},
	})
	require.ErrorIs(t, err, splitter.ErrInvalidConfiguration)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Split(cancelled, types.SplitRequest{Content: "abc"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_Split_ConfiguredDefaults(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.Split = types.SplitOptions{Strategy: "words", AtomSize: uintPtr(1), Stem: "english"}
	})

	resp, err := svc.Split(context.Background(), types.SplitRequest{Content: "Cats running quickly"})
	require.NoError(t, err)
	assert.Equal(t, "words", resp.Strategy)
	assert.Equal(t, []string{"cat", "run", "quick"}, resp.Atoms)

	// Defaults for another strategy do not leak into an explicit one
	chunks, err := svc.Split(context.Background(), types.SplitRequest{
		Content:      "ABCDEFGHI",
		SplitOptions: types.SplitOptions{Strategy: "chunks"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "DEF", "GHI"}, chunks.Atoms)
}

func TestService_Build(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	record, err := svc.Build(ctx, types.BuildRequest{
		Name:     "pair",
		Payloads: []string{"abcd", "abce"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "pair", record.Name)
	assert.Equal(t, splitter.StrategyNGrams, record.Strategy)
	assert.Equal(t, uint(3), record.AtomSize)
	assert.Equal(t, 1, record.Window)
	assert.Equal(t, 2, record.PayloadCount)

	require.Len(t, record.Nodes, 3)
	assert.Equal(t, "abc", record.Nodes[0].Content)
	assert.Equal(t, 2, record.Nodes[0].Occurrences)
	assert.Equal(t, []uint32{0, 1}, record.Nodes[0].Payloads)
	assert.Equal(t, "bcd", record.Nodes[1].Content)
	assert.Equal(t, "bce", record.Nodes[2].Content)
	assert.Len(t, record.Edges, 2)

	stored, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Nodes, stored.Nodes)
	assert.Equal(t, record.Edges, stored.Edges)

	count, err := st.Count(ctx, splitter.StrategyNGrams)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_Build_HugeAtomSize(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	record, err := svc.Build(ctx, types.BuildRequest{
		Payloads: []string{"abcd", "abce"},
		SplitOptions: types.SplitOptions{
			Strategy: splitter.StrategyChunks,
			AtomSize: uintPtr(math.MaxUint),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(math.MaxUint), record.AtomSize)
	require.Len(t, record.Nodes, 2)
	assert.Equal(t, "abcd", record.Nodes[0].Content)
	assert.Equal(t, "abce", record.Nodes[1].Content)
	assert.Empty(t, record.Edges)

	stored, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(math.MaxUint), stored.AtomSize)

	resp, err := svc.Split(ctx, types.SplitRequest{
		Content:      "abcd",
		SplitOptions: types.SplitOptions{AtomSize: uintPtr(math.MaxUint)},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Atoms)
}

func TestService_Build_DefaultName(t *testing.T) {
	svc, _ := newTestService(t, nil)

	record, err := svc.Build(context.Background(), types.BuildRequest{Payloads: []string{"abc"}})
	require.NoError(t, err)
	assert.Equal(t, "graph-"+record.ID[:8], record.Name)
}

func TestService_Build_DeterministicAcrossWorkers(t *testing.T) {
	payloads := make([]string, 50)
	for i := range payloads {
		payloads[i] = fmt.Sprintf("payload %d with shared words %d", i, i%7)
	}

	build := func(workers int) *types.GraphRecord {
		svc, _ := newTestService(t, func(cfg *Config) {
			cfg.Workers = workers
			cfg.CacheSize = 0
		})
		record, err := svc.Build(context.Background(), types.BuildRequest{
			Payloads:     payloads,
			Window:       2,
			SplitOptions: types.SplitOptions{Strategy: "words"},
		})
		require.NoError(t, err)
		return record
	}

	serial := build(1)
	parallel := build(8)

	assert.Equal(t, serial.Nodes, parallel.Nodes)
	assert.Equal(t, serial.Edges, parallel.Edges)
	assert.Equal(t, 50, parallel.PayloadCount)
}

func TestService_Build_SplitErrorAborts(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Build(ctx, types.BuildRequest{
		Payloads:     []string{"ABCDEF", "ABCDEFGH", "GHI"},
		SplitOptions: types.SplitOptions{Strategy: "chunks", Remainder: "strict"},
	})
	require.ErrorIs(t, err, splitter.ErrMalformedPayload)
	assert.Contains(t, err.Error(), "payload 1")

	count, err := st.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestService_Build_InvalidRequests(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Build(ctx, types.BuildRequest{})
	require.ErrorIs(t, err, splitter.ErrInvalidArgument)

	_, err = svc.Build(ctx, types.BuildRequest{Payloads: []string{"abc"}, Window: -1})
	require.ErrorIs(t, err, splitter.ErrInvalidConfiguration)

	_, err = svc.Build(ctx, types.BuildRequest{
		Payloads:     []string{"abc"},
		SplitOptions: types.SplitOptions{Strategy: "window", Step: 5},
	})
	require.ErrorIs(t, err, splitter.ErrInvalidConfiguration)
}

func TestService_Build_UsesCache(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Split(ctx, types.SplitRequest{Content: "abcd"})
	require.NoError(t, err)

	_, err = svc.Build(ctx, types.BuildRequest{Payloads: []string{"abcd"}})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, 1, stats.CacheEntries)
	assert.Equal(t, int64(0), stats.CacheEvictions)
	assert.Equal(t, 1, stats.TotalGraphs)
	assert.Equal(t, 2, stats.TotalNodes)
}

func TestService_Stats_CacheEvictions(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) { cfg.CacheSize = 1 })
	ctx := context.Background()

	for _, content := range []string{"abcd", "efgh", "ijkl"} {
		_, err := svc.Split(ctx, types.SplitRequest{Content: content})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CacheEntries)
	assert.Equal(t, int64(2), stats.CacheEvictions)
	assert.Equal(t, int64(3), stats.CacheMisses)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestService_Index_Directory(t *testing.T) {
	svc, _ := newTestService(t, nil)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "abcd")
	writeFile(t, filepath.Join(dir, "sub", "b.md"), "abce")
	writeFile(t, filepath.Join(dir, ".git", "c.txt"), "zzzz")
	writeFile(t, filepath.Join(dir, "image.png"), "yyyy")
	writeFile(t, filepath.Join(dir, "bad.txt"), string([]byte{0xff, 0xfe, 0xfd}))

	record, err := svc.Index(context.Background(), types.IndexRequest{Path: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), record.Name)
	assert.Equal(t, 2, record.PayloadCount)

	var atoms []string
	for _, n := range record.Nodes {
		atoms = append(atoms, n.Content)
	}
	assert.Equal(t, []string{"abc", "bcd", "bce"}, atoms)
}

func TestService_Index_ExtensionFilter(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.IndexExtensions = []string{"md"}
	})

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "abcd")
	writeFile(t, filepath.Join(dir, "b.md"), "wxyz")

	record, err := svc.Index(context.Background(), types.IndexRequest{Path: dir, Name: "docs"})
	require.NoError(t, err)
	assert.Equal(t, "docs", record.Name)
	assert.Equal(t, 1, record.PayloadCount)
	assert.Equal(t, "wxy", record.Nodes[0].Content)
}

func TestService_Index_SingleFile(t *testing.T) {
	svc, _ := newTestService(t, nil)

	path := filepath.Join(t.TempDir(), "poem.txt")
	writeFile(t, path, "one\ntwo\nthree\n")

	record, err := svc.Index(context.Background(), types.IndexRequest{
		Path:         path,
		SplitOptions: types.SplitOptions{Strategy: "lines", AtomSize: uintPtr(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "poem.txt", record.Name)
	assert.Len(t, record.Nodes, 3)
	assert.Len(t, record.Edges, 2)
}

func TestService_Index_Errors(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.MaxFileBytes = 4
	})
	ctx := context.Background()

	_, err := svc.Index(ctx, types.IndexRequest{})
	require.ErrorIs(t, err, splitter.ErrInvalidArgument)

	_, err = svc.Index(ctx, types.IndexRequest{Path: filepath.Join(t.TempDir(), "missing")})
	require.ErrorIs(t, err, os.ErrNotExist)

	empty := t.TempDir()
	_, err = svc.Index(ctx, types.IndexRequest{Path: empty})
	require.ErrorIs(t, err, splitter.ErrInvalidArgument)

	big := filepath.Join(t.TempDir(), "big.txt")
	writeFile(t, big, "too large")
	_, err = svc.Index(ctx, types.IndexRequest{Path: big})
	require.Error(t, err)
}

func TestService_ListAndDelete(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Build(ctx, types.BuildRequest{Name: "first", Payloads: []string{"abc"}})
	require.NoError(t, err)
	_, err = svc.Build(ctx, types.BuildRequest{
		Name:         "second",
		Payloads:     []string{"a b c"},
		SplitOptions: types.SplitOptions{Strategy: "words"},
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, store.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	words, err := svc.List(ctx, store.ListOptions{Strategy: "words"})
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "second", words[0].Name)

	require.NoError(t, svc.Delete(ctx, first.ID))

	_, err = svc.Get(ctx, first.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	err = svc.Delete(ctx, first.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestIsIndexableFile(t *testing.T) {
	assert.True(t, isIndexableFile(".go"))
	assert.True(t, isIndexableFile(".md"))
	assert.False(t, isIndexableFile(".png"))
	assert.False(t, isIndexableFile(""))
}
