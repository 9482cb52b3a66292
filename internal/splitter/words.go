package splitter

import (
	"fmt"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Words splits text into word n-grams. Tokens are whitespace separated; with
// stemming enabled they are lowercased and reduced to their Snowball stem.
// Each atom is AtomSize consecutive tokens joined by a single space.
//
// Windows advance by Step tokens and follow SlidingWindow's policies: a text
// with fewer tokens than AtomSize yields nothing under the default
// RemainderDiscard. An atom size of zero is an ErrInvalidConfiguration.
type Words struct {
	Base
	step      uint
	remainder RemainderPolicy
	stem      string
}

// NewWords creates a word n-gram splitter
func NewWords(opts ...Option) (*Words, error) {
	o := applyOptions(opts)

	s := &Words{
		step:      o.Step,
		remainder: o.remainderOr(RemainderDiscard),
		stem:      strings.ToLower(o.Stem),
	}

	base, err := NewBase(o.AtomSize, windowValidator(StrategyWords, &s.step))
	if err != nil {
		return nil, err
	}
	s.Base = base

	// Check the language once so Split cannot fail on it later
	if s.stem != "" {
		if _, err := snowball.Stem("running", s.stem, true); err != nil {
			return nil, fmt.Errorf("%w: stemming language %q: %v", ErrInvalidConfiguration, s.stem, err)
		}
	}

	return s, nil
}

// Split divides the text into word n-grams
func (s *Words) Split(payload *types.Payload[string]) ([]types.Atom[string], error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}

	tokens, err := s.tokens(payload.Data)
	if err != nil {
		return nil, err
	}

	grams, err := windows(tokens, s.AtomSize(), s.step, s.remainder, StrategyWords)
	if err != nil {
		return nil, err
	}

	atoms := make([]types.Atom[string], len(grams))
	for i, gram := range grams {
		atoms[i] = types.NewAtom(strings.Join(gram.Data, " "))
	}
	return atoms, nil
}

// tokens splits text on whitespace and stems each token when configured
func (s *Words) tokens(text string) ([]string, error) {
	fields := strings.Fields(text)
	if s.stem == "" {
		return fields, nil
	}

	for i, field := range fields {
		stemmed, err := snowball.Stem(strings.ToLower(field), s.stem, true)
		if err != nil {
			return nil, &MalformedPayloadError{Strategy: StrategyWords, Reason: "stemming failed", cause: err}
		}
		fields[i] = stemmed
	}
	return fields, nil
}
