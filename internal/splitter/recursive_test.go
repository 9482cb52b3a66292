package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

func TestRecursive_Split(t *testing.T) {
	s, err := NewRecursive()
	require.NoError(t, err)

	atoms, err := s.Split(types.NewPayload("ABCDEFGHI"))
	require.NoError(t, err)

	got := atomStrings(atoms)
	require.NotEmpty(t, got)
	assert.Equal(t, "ABCDEFGHI", strings.Join(got, ""))
	for _, a := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(a), 3)
	}
}

func TestRecursive_RespectsSeparators(t *testing.T) {
	s, err := NewRecursive(WithAtomSize(12))
	require.NoError(t, err)

	content := "first paragraph\n\nsecond one\n\nthird"
	atoms, err := s.Split(types.NewPayload(content))
	require.NoError(t, err)

	for _, a := range atoms {
		assert.LessOrEqual(t, utf8.RuneCountInString(a.Data), 12, a.Data)
		assert.NotContains(t, a.Data, "\n\n")
	}

	again, err := s.Split(types.NewPayload(content))
	require.NoError(t, err)
	assert.Equal(t, atoms, again)
}

func TestRecursive_InvalidConfiguration(t *testing.T) {
	_, err := NewRecursive(WithAtomSize(0))
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewRecursive(WithAtomSize(4), WithOverlap(4))
	require.ErrorIs(t, err, ErrInvalidConfiguration)

	s, err := NewRecursive(WithAtomSize(10), WithOverlap(2))
	require.NoError(t, err)
	require.ErrorIs(t, s.SetAtomSize(2), ErrInvalidConfiguration)
	require.NoError(t, s.SetAtomSize(3))
	assert.Equal(t, uint(3), s.AtomSize())
}
