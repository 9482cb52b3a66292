package splitter

import (
	"sort"
	"strings"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Strategy names
const (
	StrategyFixed     = "fixed"
	StrategyWindow    = "window"
	StrategyChunks    = "chunks"
	StrategyNGrams    = "ngrams"
	StrategyWords     = "words"
	StrategyLines     = "lines"
	StrategyRecursive = "recursive"

	// DefaultStrategy splits text into character n-grams
	DefaultStrategy = StrategyNGrams
)

// TextFactory constructs a text splitter from options
type TextFactory func(opts ...Option) (Splitter[string, string], error)

var textStrategies = map[string]TextFactory{
	StrategyChunks:    textFactory(NewTextChunks),
	StrategyNGrams:    textFactory(NewTextNGrams),
	StrategyWords:     textFactory(NewWords),
	StrategyLines:     textFactory(NewLines),
	StrategyRecursive: textFactory(NewRecursive),
}

func textFactory[S Splitter[string, string]](fn func(...Option) (S, error)) TextFactory {
	return func(opts ...Option) (Splitter[string, string], error) {
		s, err := fn(opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// NewText creates the named text splitter. An empty name selects DefaultStrategy.
func NewText(name string, opts ...Option) (Splitter[string, string], error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultStrategy
	}

	factory, ok := textStrategies[name]
	if !ok {
		return nil, &UnknownStrategyError{Name: name}
	}
	return factory(opts...)
}

// Strategies returns the registered text strategy names in sorted order
func Strategies() []string {
	names := make([]string, 0, len(textStrategies))
	for name := range textStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OptionsFrom converts request split options into constructor options
func OptionsFrom(so types.SplitOptions) ([]Option, error) {
	var opts []Option

	if so.AtomSize != nil {
		opts = append(opts, WithAtomSize(*so.AtomSize))
	}

	remainder, err := ParseRemainder(so.Remainder)
	if err != nil {
		return nil, err
	}
	if remainder != RemainderDefault {
		opts = append(opts, WithRemainder(remainder))
	}

	if so.Step > 0 {
		opts = append(opts, WithStep(so.Step))
	}
	if so.Stem != "" {
		opts = append(opts, WithStemming(so.Stem))
	}
	if so.Overlap > 0 {
		opts = append(opts, WithOverlap(so.Overlap))
	}
	if len(so.Separators) > 0 {
		opts = append(opts, WithSeparators(so.Separators))
	}

	return opts, nil
}

// FromSplitOptions builds the text splitter described by request options
func FromSplitOptions(so types.SplitOptions) (Splitter[string, string], error) {
	opts, err := OptionsFrom(so)
	if err != nil {
		return nil, err
	}
	return NewText(so.Strategy, opts...)
}
