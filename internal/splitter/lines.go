package splitter

import (
	"strings"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

// Lines splits text into groups of AtomSize consecutive lines joined by "\n".
//
// Carriage returns before a line break are dropped and a single trailing line
// break does not start a new line. The last group may hold fewer lines
// (remainder kept). An atom size of zero means "do not split": the whole
// payload, unchanged, is the only atom.
type Lines struct {
	Base
}

// NewLines creates a line-based splitter
func NewLines(opts ...Option) (*Lines, error) {
	o := applyOptions(opts)

	base, err := NewBase(o.AtomSize, nil)
	if err != nil {
		return nil, err
	}

	return &Lines{Base: base}, nil
}

// Split divides the text into line groups
func (s *Lines) Split(payload *types.Payload[string]) ([]types.Atom[string], error) {
	if err := checkPayload(payload); err != nil {
		return nil, err
	}

	content := payload.Data
	if content == "" {
		return []types.Atom[string]{}, nil
	}

	size := s.AtomSize()
	if size == 0 {
		return []types.Atom[string]{types.NewAtom(content)}, nil
	}

	lines := splitLines(content)
	groups, err := windows(lines, size, size, RemainderKeep, StrategyLines)
	if err != nil {
		return nil, err
	}

	atoms := make([]types.Atom[string], len(groups))
	for i, group := range groups {
		atoms[i] = types.NewAtom(strings.Join(group.Data, "\n"))
	}
	return atoms, nil
}

// splitLines splits content into lines without their terminators
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
