// Package splitter decomposes payloads into ordered sequences of atoms.
//
// A Splitter is the strategy a proximity graph holds to turn one payload into
// the atoms that become its nodes. Strategies are interchangeable: the graph
// only sees Splitter[P, A] and never inspects the concrete type.
//
// Every strategy honors the same contract:
//   - the same payload content, atom size and strategy always produce the same atoms
//   - the payload is never mutated and atoms never share backing storage with it
//   - a nil payload fails with ErrInvalidArgument
//   - an empty payload yields an empty sequence
//   - trailing data shorter than one atom follows the strategy's documented
//     remainder policy and is never dropped silently
//
// Split may be called concurrently on distinct payloads through one shared
// splitter. SetAtomSize is a configuration change: callers that reconfigure
// while splits are in flight must serialize the two themselves.
package splitter

import (
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// DefaultAtomSize is the granularity used when no atom size is supplied
const DefaultAtomSize uint = 3

// Splitter converts a payload into an ordered sequence of atoms
type Splitter[P, A any] interface {
	// Split decomposes payload into atoms, in payload order
	Split(payload *types.Payload[P]) ([]types.Atom[A], error)

	// AtomSize returns the configured granularity
	AtomSize() uint

	// SetAtomSize changes the granularity for subsequent splits
	SetAtomSize(n uint) error
}

// Base carries the atom size shared by all strategies. Concrete strategies
// embed it to get AtomSize and SetAtomSize.
type Base struct {
	atomSize uint
	validate func(uint) error
}

// NewBase creates a Base. validate, when non-nil, is consulted on
// construction and on every SetAtomSize call.
func NewBase(atomSize uint, validate func(uint) error) (Base, error) {
	if validate != nil {
		if err := validate(atomSize); err != nil {
			return Base{}, err
		}
	}
	return Base{atomSize: atomSize, validate: validate}, nil
}

// AtomSize returns the configured granularity
func (b *Base) AtomSize() uint {
	return b.atomSize
}

// SetAtomSize changes the granularity for subsequent splits
func (b *Base) SetAtomSize(n uint) error {
	if b.validate != nil {
		if err := b.validate(n); err != nil {
			return err
		}
	}
	b.atomSize = n
	return nil
}

// RequirePositive returns a validator rejecting a zero atom size
func RequirePositive(strategy string) func(uint) error {
	return func(n uint) error {
		if n == 0 {
			return &ConfigError{Strategy: strategy, Field: "atom_size", Value: n, Reason: "must be positive"}
		}
		return nil
	}
}

// checkPayload rejects an absent payload
func checkPayload[P any](payload *types.Payload[P]) error {
	if payload == nil {
		return ErrNilPayload
	}
	return nil
}
