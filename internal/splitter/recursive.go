package splitter

import (
	"slices"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Recursive splits text with langchaingo's recursive character splitter: it
// tries each separator in order and merges pieces into atoms of at most
// AtomSize runes, with Overlap runes shared between neighbours. Text that fits
// no separator falls through to the empty separator, so nothing is dropped
// (remainder kept).
//
// An atom size of zero, or one not larger than the overlap, is an
// ErrInvalidConfiguration.
type Recursive struct {
	Base
	overlap    uint
	separators []string
}

// NewRecursive creates a recursive character splitter
func NewRecursive(opts ...Option) (*Recursive, error) {
	o := applyOptions(opts)

	s := &Recursive{
		overlap:    o.Overlap,
		separators: slices.Clone(o.Separators),
	}

	base, err := NewBase(o.AtomSize, s.validate)
	if err != nil {
		return nil, err
	}
	s.Base = base

	return s, nil
}

func (s *Recursive) validate(n uint) error {
	if n == 0 {
		return &ConfigError{Strategy: StrategyRecursive, Field: "atom_size", Value: n, Reason: "must be positive"}
	}
	if s.overlap >= n {
		return &ConfigError{Strategy: StrategyRecursive, Field: "overlap", Value: s.overlap, Reason: "must be smaller than atom size"}
	}
	return nil
}

// Split divides the text into recursive character chunks
func (s *Recursive) Split(payload *types.Payload[string]) ([]types.Atom[string], error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	if payload.Data == "" {
		return []types.Atom[string]{}, nil
	}

	// Sizes beyond the text length split the same way as the length itself
	limit := uint(len(payload.Data)) + 1
	size := min(s.AtomSize(), limit)
	overlap := min(s.overlap, size-1)

	ts := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(int(size)),
		textsplitter.WithChunkOverlap(int(overlap)),
		textsplitter.WithSeparators(slices.Clone(s.separators)),
	)

	chunks, err := ts.SplitText(payload.Data)
	if err != nil {
		return nil, &MalformedPayloadError{
			Strategy: StrategyRecursive,
			Length:   len(payload.Data),
			AtomSize: s.AtomSize(),
			Reason:   "recursive split failed",
			cause:    err,
		}
	}

	atoms := make([]types.Atom[string], len(chunks))
	for i, chunk := range chunks {
		atoms[i] = types.NewAtom(chunk)
	}
	return atoms, nil
}
