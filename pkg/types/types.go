// Package types defines the core data structures for atomgraph
package types

import "time"

// Payload wraps the full datum that a splitter decomposes into atoms
type Payload[T any] struct {
	Data T
}

// NewPayload creates a payload around data
func NewPayload[T any](data T) *Payload[T] {
	return &Payload[T]{Data: data}
}

// Atom wraps one fragment of a payload
type Atom[T any] struct {
	Data T
}

// NewAtom creates an atom from a fragment
func NewAtom[T any](data T) Atom[T] {
	return Atom[T]{Data: data}
}

// SplitOptions selects and configures a text splitting strategy
type SplitOptions struct {
	Strategy   string   `json:"strategy,omitempty" yaml:"strategy"`
	AtomSize   *uint    `json:"atom_size,omitempty" yaml:"atom_size"`
	Remainder  string   `json:"remainder,omitempty" yaml:"remainder"` // keep, discard, strict
	Step       uint     `json:"step,omitempty" yaml:"step"`
	Stem       string   `json:"stem,omitempty" yaml:"stem"` // snowball language for the words strategy
	Overlap    uint     `json:"overlap,omitempty" yaml:"overlap"`
	Separators []string `json:"separators,omitempty" yaml:"separators"`
}

// SplitRequest is the request payload for a one-off split
type SplitRequest struct {
	Content string `json:"content"`
	SplitOptions
}

// SplitResponse is the response payload for a split
type SplitResponse struct {
	Atoms    []string `json:"atoms"`
	Count    int      `json:"count"`
	Strategy string   `json:"strategy"`
	AtomSize uint     `json:"atom_size"`
	Cached   bool     `json:"cached"`
	Timing   int64    `json:"timing_ms"`
}

// BuildRequest is the request payload for building a graph from payloads
type BuildRequest struct {
	Name     string   `json:"name"`
	Payloads []string `json:"payloads"`
	Window   int      `json:"window,omitempty"`
	SplitOptions
}

// IndexRequest is the request payload for building a graph from a file or directory
type IndexRequest struct {
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
	Window int    `json:"window,omitempty"`
	SplitOptions
}

// NodeRecord is a persisted graph node
type NodeRecord struct {
	Key         uint64   `json:"key"`
	Content     string   `json:"content"`
	Occurrences int      `json:"occurrences"`
	Payloads    []uint32 `json:"payloads"`
}

// EdgeRecord is a persisted directed edge between two nodes
type EdgeRecord struct {
	From   uint64 `json:"from"`
	To     uint64 `json:"to"`
	Weight int    `json:"weight"`
}

// GraphRecord is a persisted proximity graph
type GraphRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Strategy     string       `json:"strategy"`
	AtomSize     uint         `json:"atom_size"`
	Window       int          `json:"window"`
	PayloadCount int          `json:"payload_count"`
	Nodes        []NodeRecord `json:"nodes,omitempty"`
	Edges        []EdgeRecord `json:"edges,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// GraphSummary describes a stored graph without its nodes and edges
type GraphSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Strategy     string    `json:"strategy"`
	AtomSize     uint      `json:"atom_size"`
	Window       int       `json:"window"`
	PayloadCount int       `json:"payload_count"`
	NodeCount    int       `json:"node_count"`
	EdgeCount    int       `json:"edge_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatsResponse contains statistics about the graph store
type StatsResponse struct {
	TotalGraphs      int            `json:"total_graphs"`
	TotalNodes       int            `json:"total_nodes"`
	TotalEdges       int            `json:"total_edges"`
	GraphsByStrategy map[string]int `json:"graphs_by_strategy"`
	StorageBytes     int64          `json:"storage_bytes"`
	CacheHits        int64          `json:"cache_hits"`
	CacheMisses      int64          `json:"cache_misses"`
	CacheEntries     int            `json:"cache_entries"`
	CacheEvictions   int64          `json:"cache_evictions"`
}
