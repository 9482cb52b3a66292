package splitter

import (
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Text splits string payloads by rune, delegating the decomposition to a
// rune-slice strategy. Atoms are fresh strings.
type Text struct {
	name  string
	inner Splitter[[]rune, []rune]
}

// NewTextChunks creates a splitter of consecutive rune chunks, following
// FixedWidth's remainder and zero-size policies
func NewTextChunks(opts ...Option) (*Text, error) {
	inner, err := NewFixedWidth[rune](opts...)
	if err != nil {
		return nil, err
	}
	return &Text{name: StrategyChunks, inner: inner}, nil
}

// NewTextNGrams creates a character n-gram splitter, following
// SlidingWindow's remainder and zero-size policies
func NewTextNGrams(opts ...Option) (*Text, error) {
	inner, err := NewSlidingWindow[rune](opts...)
	if err != nil {
		return nil, err
	}
	return &Text{name: StrategyNGrams, inner: inner}, nil
}

// Name returns the strategy name
func (t *Text) Name() string {
	return t.name
}

// AtomSize returns the atom size in runes
func (t *Text) AtomSize() uint {
	return t.inner.AtomSize()
}

// SetAtomSize changes the atom size in runes
func (t *Text) SetAtomSize(n uint) error {
	return t.inner.SetAtomSize(n)
}

// Split divides the string into rune atoms
func (t *Text) Split(payload *types.Payload[string]) ([]types.Atom[string], error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}

	parts, err := t.inner.Split(types.NewPayload([]rune(payload.Data)))
	if err != nil {
		return nil, err
	}

	atoms := make([]types.Atom[string], len(parts))
	for i, part := range parts {
		atoms[i] = types.NewAtom(string(part.Data))
	}
	return atoms, nil
}
