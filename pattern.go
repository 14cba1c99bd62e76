package weave

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is a validated column permutation.
//
// A pattern of size S maps every output column j of a slice (0-based) to the
// source column seq[j]-1 of the same slice; values are 1-based as entered by
// users. Patterns are immutable once constructed and can only be obtained
// from NewPattern, ParsePattern, Identity, Reversed or Inverse, so holding a
// *Pattern guarantees a valid permutation.
type Pattern struct {
	size int
	seq  []int
}

// NewPattern validates a pattern definition and returns the resulting
// pattern. The sequence must hold exactly size values, each in [1, size],
// with no value repeated. Validation failures are reported as *PatternError
// in check order: size, length, range, duplicates. The sequence is copied;
// the caller keeps ownership of seq.
func NewPattern(size int, seq []int) (*Pattern, error) {
	if size < 1 {
		return nil, &PatternError{Kind: ErrInvalidSize, Size: size, Index: -1}
	}
	if len(seq) != size {
		return nil, &PatternError{Kind: ErrSizeMismatch, Size: size, Index: -1, Value: len(seq)}
	}
	for i, v := range seq {
		if v < 1 || v > size {
			return nil, &PatternError{Kind: ErrInvalidRange, Size: size, Index: i, Value: v}
		}
	}
	seen := make([]bool, size+1)
	for i, v := range seq {
		if seen[v] {
			return nil, &PatternError{Kind: ErrDuplicateValue, Size: size, Index: i, Value: v}
		}
		seen[v] = true
	}

	p := &Pattern{size: size, seq: make([]int, size)}
	copy(p.seq, seq)
	return p, nil
}

// ParsePattern parses a comma-separated pattern definition such as "3,1,2".
// The pattern size is the number of elements. Whitespace around elements is
// ignored. Elements that are not integers fail with ErrInvalidRange.
func ParsePattern(s string) (*Pattern, error) {
	if strings.TrimSpace(s) == "" {
		return nil, &PatternError{Kind: ErrInvalidSize, Index: -1}
	}

	parts := strings.Split(s, ",")
	seq := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("weave: pattern element %d (%q) is not an integer: %w", i, strings.TrimSpace(part), ErrInvalidRange)
		}
		seq[i] = v
	}
	return NewPattern(len(seq), seq)
}

// Identity returns the pattern that leaves every column in place.
// Returns nil if size < 1.
func Identity(size int) *Pattern {
	if size < 1 {
		return nil
	}
	seq := make([]int, size)
	for i := range seq {
		seq[i] = i + 1
	}
	return &Pattern{size: size, seq: seq}
}

// Reversed returns the pattern that mirrors every slice horizontally.
// Returns nil if size < 1.
func Reversed(size int) *Pattern {
	if size < 1 {
		return nil
	}
	seq := make([]int, size)
	for i := range seq {
		seq[i] = size - i
	}
	return &Pattern{size: size, seq: seq}
}

// Size returns the pattern size, the width in pixels of the slices it
// applies to.
func (p *Pattern) Size() int {
	return p.size
}

// Sequence returns a copy of the pattern values (1-based source positions).
func (p *Pattern) Sequence() []int {
	seq := make([]int, p.size)
	copy(seq, p.seq)
	return seq
}

// Inverse returns the pattern that undoes p: applying p and then p.Inverse()
// restores the original buffer.
func (p *Pattern) Inverse() *Pattern {
	inv := make([]int, p.size)
	for j, v := range p.seq {
		inv[v-1] = j + 1
	}
	return &Pattern{size: p.size, seq: inv}
}

// IsIdentity reports whether the pattern leaves every column in place.
func (p *Pattern) IsIdentity() bool {
	for j, v := range p.seq {
		if v != j+1 {
			return false
		}
	}
	return true
}

// String returns the definition in the form accepted by ParsePattern.
func (p *Pattern) String() string {
	parts := make([]string, p.size)
	for i, v := range p.seq {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
