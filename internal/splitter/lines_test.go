package splitter

import (
	"strings"
	"testing"

	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

func TestLines_Split_Empty(t *testing.T) {
	s, err := NewLines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	atoms, err := s.Split(types.NewPayload(""))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(atoms) != 0 {
		t.Errorf("expected 0 atoms for empty content, got %d", len(atoms))
	}
}

func TestLines_Split(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		size     uint
		expected []string
	}{
		{
			name:     "single group",
			content:  "line 1\nline 2\nline 3",
			size:     3,
			expected: []string{"line 1\nline 2\nline 3"},
		},
		{
			name:     "remainder kept",
			content:  "a\nb\nc\nd\ne",
			size:     2,
			expected: []string{"a\nb", "c\nd", "e"},
		},
		{
			name:     "trailing newline",
			content:  "a\nb\n",
			size:     1,
			expected: []string{"a", "b"},
		},
		{
			name:     "crlf",
			content:  "a\r\nb\r\nc",
			size:     2,
			expected: []string{"a\nb", "c"},
		},
		{
			name:     "blank lines preserved",
			content:  "a\n\nb",
			size:     1,
			expected: []string{"a", "", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewLines(WithAtomSize(tt.size))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			atoms, err := s.Split(types.NewPayload(tt.content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := atomStrings(atoms)
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") || len(got) != len(tt.expected) {
				t.Errorf("Split() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLines_ZeroAtomSizeMeansWholePayload(t *testing.T) {
	s, err := NewLines(WithAtomSize(0))
	if err != nil {
		t.Fatalf("zero atom size should be accepted: %v", err)
	}
	if s.AtomSize() != 0 {
		t.Errorf("expected atom size 0, got %d", s.AtomSize())
	}

	content := "line 1\r\nline 2\n"
	atoms, err := s.Split(types.NewPayload(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atoms) != 1 {
		t.Fatalf("expected 1 atom, got %d", len(atoms))
	}
	if atoms[0].Data != content {
		t.Errorf("expected payload unchanged, got %q", atoms[0].Data)
	}

	if err := s.SetAtomSize(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	atoms, err = s.Split(types.NewPayload(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(atoms) != 2 {
		t.Errorf("expected 2 atoms after SetAtomSize(1), got %d", len(atoms))
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{"one line", "hi", 1},
		{"two lines", "line 1\nline 2", 2},
		{"trailing newline", "line 1\nline 2\n", 2},
		{"only newline", "\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(splitLines(tt.content)); got != tt.expected {
				t.Errorf("splitLines(%q) has %d lines, want %d", tt.content, got, tt.expected)
			}
		})
	}
}

func BenchmarkLines_LargeFile(b *testing.B) {
	s, _ := NewLines(WithAtomSize(20))

	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("This is a line of the content\n")
	}
	payload := types.NewPayload(sb.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Split(payload)
	}
}
