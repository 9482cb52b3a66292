package splitter

import (
	"fmt"
	"strings"
)

// RemainderPolicy decides what happens to trailing data shorter than one atom
type RemainderPolicy int

const (
	// RemainderDefault selects the strategy's own default policy
	RemainderDefault RemainderPolicy = iota
	// RemainderKeep emits the short trailing fragment as a final atom
	RemainderKeep
	// RemainderDiscard drops the short trailing fragment
	RemainderDiscard
	// RemainderStrict fails with ErrMalformedPayload when a short trailing fragment exists
	RemainderStrict
)

func (p RemainderPolicy) String() string {
	switch p {
	case RemainderKeep:
		return "keep"
	case RemainderDiscard:
		return "discard"
	case RemainderStrict:
		return "strict"
	default:
		return "default"
	}
}

// ParseRemainder parses a remainder policy name
func ParseRemainder(s string) (RemainderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return RemainderDefault, nil
	case "keep":
		return RemainderKeep, nil
	case "discard":
		return RemainderDiscard, nil
	case "strict":
		return RemainderStrict, nil
	default:
		return RemainderDefault, fmt.Errorf("%w: unknown remainder policy %q", ErrInvalidConfiguration, s)
	}
}

// Options configures splitter construction
type Options struct {
	AtomSize   uint            // Granularity of each atom
	Remainder  RemainderPolicy // Handling of a short trailing fragment
	Step       uint            // Distance between consecutive window starts
	Stem       string          // Snowball language for word stemming, empty disables
	Overlap    uint            // Overlap between recursive chunks
	Separators []string        // Separators tried by the recursive strategy, in order
}

// Option configures a splitter
type Option func(*Options)

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		AtomSize:   DefaultAtomSize,
		Remainder:  RemainderDefault,
		Step:       1,
		Separators: []string{"\n\n", "\n", " ", ""},
	}
}

// WithAtomSize sets the atom size. Zero is accepted here; strategies that
// cannot use it reject it with ErrInvalidConfiguration.
func WithAtomSize(n uint) Option {
	return func(o *Options) {
		o.AtomSize = n
	}
}

// WithRemainder sets the remainder policy
func WithRemainder(p RemainderPolicy) Option {
	return func(o *Options) {
		o.Remainder = p
	}
}

// WithStep sets the window step for sliding strategies
func WithStep(n uint) Option {
	return func(o *Options) {
		o.Step = n
	}
}

// WithStemming enables Snowball stemming in the given language for word strategies
func WithStemming(language string) Option {
	return func(o *Options) {
		o.Stem = language
	}
}

// WithOverlap sets the overlap between recursive chunks
func WithOverlap(n uint) Option {
	return func(o *Options) {
		o.Overlap = n
	}
}

// WithSeparators sets the separators for the recursive strategy
func WithSeparators(separators []string) Option {
	return func(o *Options) {
		o.Separators = separators
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) remainderOr(def RemainderPolicy) RemainderPolicy {
	if o.Remainder == RemainderDefault {
		return def
	}
	return o.Remainder
}
