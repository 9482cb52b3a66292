// Package graph materializes proximity-graph nodes from the atoms a splitter
// produces. Each atom maps to one node; identical atoms share a node, and
// atoms of the same payload within a window of each other are linked by a
// directed, weighted edge.
package graph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/minio/highwayhash"
	"go.uber.org/zap"

	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// DefaultWindow links each atom to the one that follows it
const DefaultWindow = 1

var (
	// ErrNilSplitter is returned when a graph is created without a splitter
	ErrNilSplitter = errors.New("graph: splitter is nil")

	// ErrNilKeyFunc is returned when a graph is created without a key function
	ErrNilKeyFunc = errors.New("graph: key function is nil")
)

// nodeHashKey is the HighwayHash key for node identities. Changing it changes
// every persisted node key.
var nodeHashKey = []byte("atomgraph-node-key-0123456789abc")

// KeyFunc returns the bytes that identify an atom's content
type KeyFunc[A any] func(A) []byte

// StringKey identifies string atoms by their bytes
func StringKey(s string) []byte { return []byte(s) }

// BytesKey identifies byte atoms by themselves
func BytesKey(b []byte) []byte { return b }

// RunesKey identifies rune atoms by their UTF-8 encoding
func RunesKey(r []rune) []byte { return []byte(string(r)) }

// Float64sKey identifies numeric atoms by their IEEE 754 bits
func Float64sKey(v []float64) []byte {
	buf := make([]byte, 0, len(v)*8)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}
	return buf
}

// NodeKey hashes identity bytes into a node key
func NodeKey(b []byte) uint64 {
	return highwayhash.Sum64(b, nodeHashKey)
}

// Node is one proximity-graph node
type Node[A any] struct {
	Key         uint64
	Atom        types.Atom[A]
	Occurrences int             // atoms that mapped to this node
	Payloads    *roaring.Bitmap // ordinals of payloads that produced it
}

// Edge links two nodes whose atoms appeared within the window of each other
type Edge struct {
	From   uint64
	To     uint64
	Weight int
}

type edgeKey struct {
	from, to uint64
}

// Options configures a graph
type Options struct {
	Window int
	Logger *zap.Logger
}

// Option configures a graph
type Option func(*Options)

// WithWindow sets how many following atoms each atom links to
func WithWindow(n int) Option {
	return func(o *Options) {
		o.Window = n
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Graph is a proximity graph that owns the splitter for its payloads
type Graph[P, A any] struct {
	mu       sync.RWMutex
	splitter splitter.Splitter[P, A]
	key      KeyFunc[A]
	window   int
	logger   *zap.Logger

	nodes    map[uint64]*Node[A]
	order    []uint64
	edges    map[edgeKey]int
	payloads uint32
}

// New creates an empty graph
func New[P, A any](s splitter.Splitter[P, A], key KeyFunc[A], opts ...Option) (*Graph[P, A], error) {
	if s == nil {
		return nil, ErrNilSplitter
	}
	if key == nil {
		return nil, ErrNilKeyFunc
	}

	o := Options{Window: DefaultWindow}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Window < 1 {
		return nil, fmt.Errorf("%w: window must be positive, got %d", splitter.ErrInvalidConfiguration, o.Window)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	return &Graph[P, A]{
		splitter: s,
		key:      key,
		window:   o.Window,
		logger:   o.Logger,
		nodes:    make(map[uint64]*Node[A]),
		edges:    make(map[edgeKey]int),
	}, nil
}

// Splitter returns the graph's splitter. Reconfiguring it between Add calls
// affects later payloads only.
func (g *Graph[P, A]) Splitter() splitter.Splitter[P, A] {
	return g.splitter
}

// Window returns the edge window
func (g *Graph[P, A]) Window() int {
	return g.window
}

// Add splits payload and inserts its atoms, returning the payload's ordinal.
// When splitting fails nothing is inserted and the error is returned as is.
func (g *Graph[P, A]) Add(payload *types.Payload[P]) (uint32, error) {
	atoms, err := g.splitter.Split(payload)
	if err != nil {
		g.logger.Warn("split failed, payload not added", zap.Error(err))
		return 0, err
	}
	return g.AddAtoms(atoms), nil
}

// AddAtoms inserts atoms that were split elsewhere as one payload
func (g *Graph[P, A]) AddAtoms(atoms []types.Atom[A]) uint32 {
	keys := make([]uint64, len(atoms))
	for i, a := range atoms {
		keys[i] = NodeKey(g.key(a.Data))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ordinal := g.payloads
	g.payloads++

	created := 0
	for i, k := range keys {
		node, ok := g.nodes[k]
		if !ok {
			node = &Node[A]{Key: k, Atom: atoms[i], Payloads: roaring.New()}
			g.nodes[k] = node
			g.order = append(g.order, k)
			created++
		}
		node.Occurrences++
		node.Payloads.Add(ordinal)
	}

	for i := range keys {
		for j := i + 1; j <= i+g.window && j < len(keys); j++ {
			g.edges[edgeKey{keys[i], keys[j]}]++
		}
	}

	g.logger.Debug("payload added",
		zap.Uint32("payload", ordinal),
		zap.Int("atoms", len(atoms)),
		zap.Int("new_nodes", created),
		zap.Int("nodes", len(g.nodes)),
	)

	return ordinal
}

// Len returns the number of nodes
func (g *Graph[P, A]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges
func (g *Graph[P, A]) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Payloads returns how many payloads were added
func (g *Graph[P, A]) Payloads() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return int(g.payloads)
}

// Node returns a copy of the node with the given key
func (g *Graph[P, A]) Node(key uint64) (Node[A], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[key]
	if !ok {
		return Node[A]{}, false
	}
	return node.snapshot(), true
}

// Nodes returns copies of all nodes in first-seen order
func (g *Graph[P, A]) Nodes() []Node[A] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]Node[A], len(g.order))
	for i, k := range g.order {
		nodes[i] = g.nodes[k].snapshot()
	}
	return nodes
}

// Edges returns all edges ordered by From, then To
func (g *Graph[P, A]) Edges() []Edge {
	g.mu.RLock()
	edges := make([]Edge, 0, len(g.edges))
	for k, w := range g.edges {
		edges = append(edges, Edge{From: k.from, To: k.to, Weight: w})
	}
	g.mu.RUnlock()

	SortEdges(edges)
	return edges
}

// SortEdges orders edges by From, then To
func SortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}

func (n *Node[A]) snapshot() Node[A] {
	return Node[A]{
		Key:         n.Key,
		Atom:        n.Atom,
		Occurrences: n.Occurrences,
		Payloads:    n.Payloads.Clone(),
	}
}
