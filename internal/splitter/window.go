package splitter

import (
	"slices"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// FixedWidth splits a slice payload into consecutive, non-overlapping atoms of
// AtomSize elements.
//
// Remainder policy: RemainderKeep by default, so "ABCDEFGH" at size 3 yields
// ABC, DEF, GH. RemainderDiscard yields ABC, DEF and RemainderStrict fails with
// ErrMalformedPayload. An atom size of zero is an ErrInvalidConfiguration.
type FixedWidth[E any] struct {
	Base
	remainder RemainderPolicy
}

// NewFixedWidth creates a fixed-width splitter
func NewFixedWidth[E any](opts ...Option) (*FixedWidth[E], error) {
	o := applyOptions(opts)

	base, err := NewBase(o.AtomSize, RequirePositive(StrategyFixed))
	if err != nil {
		return nil, err
	}

	return &FixedWidth[E]{
		Base:      base,
		remainder: o.remainderOr(RemainderKeep),
	}, nil
}

// Remainder returns the effective remainder policy
func (s *FixedWidth[E]) Remainder() RemainderPolicy {
	return s.remainder
}

// Split divides the payload into fixed-width atoms
func (s *FixedWidth[E]) Split(payload *types.Payload[[]E]) ([]types.Atom[[]E], error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	size := s.AtomSize()
	return windows(payload.Data, size, size, s.remainder, StrategyFixed)
}

// SlidingWindow splits a slice payload into overlapping windows of AtomSize
// elements whose starts are Step elements apart (k-mers at the default step of 1).
//
// Remainder policy: RemainderDiscard by default, so a payload shorter than one
// window yields no atoms. RemainderKeep emits one trailing short window covering
// the elements no full window reached, and RemainderStrict fails with
// ErrMalformedPayload in that case. Atom size zero, step zero, or a step larger
// than the atom size are ErrInvalidConfiguration.
type SlidingWindow[E any] struct {
	Base
	step      uint
	remainder RemainderPolicy
}

// NewSlidingWindow creates a sliding-window splitter
func NewSlidingWindow[E any](opts ...Option) (*SlidingWindow[E], error) {
	o := applyOptions(opts)

	s := &SlidingWindow[E]{
		step:      o.Step,
		remainder: o.remainderOr(RemainderDiscard),
	}

	base, err := NewBase(o.AtomSize, windowValidator(StrategyWindow, &s.step))
	if err != nil {
		return nil, err
	}
	s.Base = base

	return s, nil
}

// Step returns the distance between window starts
func (s *SlidingWindow[E]) Step() uint {
	return s.step
}

// Remainder returns the effective remainder policy
func (s *SlidingWindow[E]) Remainder() RemainderPolicy {
	return s.remainder
}

// Split divides the payload into overlapping windows
func (s *SlidingWindow[E]) Split(payload *types.Payload[[]E]) ([]types.Atom[[]E], error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	return windows(payload.Data, s.AtomSize(), s.step, s.remainder, StrategyWindow)
}

// windowValidator checks an atom size against the step it will be used with
func windowValidator(strategy string, step *uint) func(uint) error {
	positive := RequirePositive(strategy)
	return func(n uint) error {
		if err := positive(n); err != nil {
			return err
		}
		if *step == 0 {
			return &ConfigError{Strategy: strategy, Field: "step", Value: *step, Reason: "must be positive"}
		}
		if *step > n {
			return &ConfigError{Strategy: strategy, Field: "step", Value: *step, Reason: "must not exceed atom size"}
		}
		return nil
	}
}

// windows emits copies of data[start:start+size] for start = 0, step, 2*step, ...
// while a full window fits, then applies the remainder policy to any elements
// the windows did not cover. step must be in [1, size].
func windows[E any](data []E, size, step uint, policy RemainderPolicy, strategy string) ([]types.Atom[[]E], error) {
	n := len(data)

	// Past n+1 every size and step behaves the same, and the clamp keeps the
	// int conversions below from wrapping
	limit := uint(n) + 1
	w, st := int(min(size, limit)), int(min(step, limit))

	atoms := make([]types.Atom[[]E], 0, n/st+1)
	if n == 0 {
		return atoms, nil
	}

	start, covered := 0, 0
	for ; start+w <= n; start += st {
		atoms = append(atoms, types.NewAtom(slices.Clone(data[start:start+w])))
		covered = start + w
	}

	if covered == n {
		return atoms, nil
	}

	// start <= covered here because step <= size
	switch policy {
	case RemainderKeep:
		atoms = append(atoms, types.NewAtom(slices.Clone(data[start:])))
	case RemainderStrict:
		return nil, &MalformedPayloadError{
			Strategy: strategy,
			Length:   n,
			AtomSize: size,
			Reason:   "trailing fragment shorter than atom size",
		}
	}

	return atoms, nil
}
