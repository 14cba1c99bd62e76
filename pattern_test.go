package weave

import (
	"errors"
	"testing"
)

// TestNewPattern_Valid tests that well-formed permutations are accepted.
func TestNewPattern_Valid(t *testing.T) {
	tests := []struct {
		name string
		size int
		seq  []int
	}{
		{"single column", 1, []int{1}},
		{"identity", 3, []int{1, 2, 3}},
		{"reversal", 4, []int{4, 3, 2, 1}},
		{"rotation", 3, []int{3, 1, 2}},
		{"interleave", 6, []int{1, 4, 2, 5, 3, 6}},
		{"large", 24, []int{24, 1, 23, 2, 22, 3, 21, 4, 20, 5, 19, 6, 18, 7, 17, 8, 16, 9, 15, 10, 14, 11, 13, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, err := NewPattern(tt.size, tt.seq)
			if err != nil {
				t.Fatalf("NewPattern(%d, %v) = %v, want nil error", tt.size, tt.seq, err)
			}
			if pat.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", pat.Size(), tt.size)
			}
			got := pat.Sequence()
			for i, v := range tt.seq {
				if got[i] != v {
					t.Errorf("Sequence()[%d] = %d, want %d", i, got[i], v)
				}
			}
		})
	}
}

// TestNewPattern_Invalid tests every validation failure kind together with
// the offending index and value carried by the error.
func TestNewPattern_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		seq       []int
		wantKind  error
		wantIndex int
		wantValue int
	}{
		{"zero size", 0, []int{}, ErrInvalidSize, -1, 0},
		{"negative size", -2, nil, ErrInvalidSize, -1, 0},
		{"too short", 3, []int{1, 2}, ErrSizeMismatch, -1, 2},
		{"too long", 3, []int{1, 2, 3, 4}, ErrSizeMismatch, -1, 4},
		{"value too large", 3, []int{1, 2, 5}, ErrInvalidRange, 2, 5},
		{"value zero", 3, []int{0, 1, 2}, ErrInvalidRange, 0, 0},
		{"value negative", 4, []int{1, -2, 3, 4}, ErrInvalidRange, 1, -2},
		{"duplicate", 3, []int{1, 2, 2}, ErrDuplicateValue, 2, 2},
		{"duplicate first value", 4, []int{3, 3, 1, 2}, ErrDuplicateValue, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, err := NewPattern(tt.size, tt.seq)
			if err == nil {
				t.Fatalf("NewPattern(%d, %v) succeeded, want error", tt.size, tt.seq)
			}
			if pat != nil {
				t.Error("invalid definition must not produce a pattern")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("errors.Is(err, %v) = false for %v", tt.wantKind, err)
			}

			var perr *PatternError
			if !errors.As(err, &perr) {
				t.Fatalf("error %v is not a *PatternError", err)
			}
			if perr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", perr.Index, tt.wantIndex)
			}
			if perr.Value != tt.wantValue {
				t.Errorf("Value = %d, want %d", perr.Value, tt.wantValue)
			}
			if perr.Error() == "" {
				t.Error("error message is empty")
			}
		})
	}
}

// TestNewPattern_FirstFailureWins verifies the check order: a definition that
// is both too short and out of range reports the length problem.
func TestNewPattern_FirstFailureWins(t *testing.T) {
	_, err := NewPattern(3, []int{9, 9})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("got %v, want ErrSizeMismatch", err)
	}

	// In-range scan runs before the duplicate scan.
	_, err = NewPattern(3, []int{2, 2, 9})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("got %v, want ErrInvalidRange", err)
	}
}

// TestNewPattern_CopiesSequence verifies the pattern is immune to later
// mutation of the caller's slice.
func TestNewPattern_CopiesSequence(t *testing.T) {
	seq := []int{3, 1, 2}
	pat, err := NewPattern(3, seq)
	if err != nil {
		t.Fatal(err)
	}

	seq[0] = 99
	if got := pat.Sequence(); got[0] != 3 {
		t.Errorf("pattern changed after input mutation: Sequence()[0] = %d, want 3", got[0])
	}

	out := pat.Sequence()
	out[1] = 99
	if got := pat.Sequence(); got[1] != 1 {
		t.Errorf("pattern changed after output mutation: Sequence()[1] = %d, want 1", got[1])
	}
}

// TestParsePattern covers the textual definition form.
func TestParsePattern(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr error
	}{
		{"simple", "3,1,2", []int{3, 1, 2}, nil},
		{"whitespace", " 3 , 1 , 2 ", []int{3, 1, 2}, nil},
		{"single", "1", []int{1}, nil},
		{"empty", "", nil, ErrInvalidSize},
		{"blank", "   ", nil, ErrInvalidSize},
		{"not a number", "3,x,2", nil, ErrInvalidRange},
		{"float", "1.5,2", nil, ErrInvalidRange},
		{"missing element", "3,,2", nil, ErrInvalidRange},
		{"duplicate", "1,1", nil, ErrDuplicateValue},
		{"out of range", "1,2,4", nil, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pat, err := ParsePattern(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePattern(%q) = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePattern(%q) = %v, want nil error", tt.in, err)
			}
			got := pat.Sequence()
			if len(got) != len(tt.want) {
				t.Fatalf("size = %d, want %d", len(got), len(tt.want))
			}
			for i, v := range tt.want {
				if got[i] != v {
					t.Errorf("Sequence()[%d] = %d, want %d", i, got[i], v)
				}
			}
		})
	}
}

// TestIdentity tests the identity constructor.
func TestIdentity(t *testing.T) {
	pat := Identity(4)
	if pat == nil {
		t.Fatal("Identity(4) = nil")
	}
	want := []int{1, 2, 3, 4}
	got := pat.Sequence()
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Sequence()[%d] = %d, want %d", i, got[i], v)
		}
	}
	if !pat.IsIdentity() {
		t.Error("IsIdentity() = false for identity pattern")
	}

	if Identity(0) != nil {
		t.Error("Identity(0) should be nil")
	}
}

// TestReversed tests the reversal constructor.
func TestReversed(t *testing.T) {
	pat := Reversed(4)
	if pat == nil {
		t.Fatal("Reversed(4) = nil")
	}
	want := []int{4, 3, 2, 1}
	got := pat.Sequence()
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Sequence()[%d] = %d, want %d", i, got[i], v)
		}
	}
	if pat.IsIdentity() {
		t.Error("IsIdentity() = true for reversal pattern")
	}

	if Reversed(-1) != nil {
		t.Error("Reversed(-1) should be nil")
	}
}

// TestPatternInverse checks the inverse permutation and that reversal is its
// own inverse.
func TestPatternInverse(t *testing.T) {
	pat, err := NewPattern(3, []int{3, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	inv := pat.Inverse()
	want := []int{2, 3, 1}
	got := inv.Sequence()
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Inverse()[%d] = %d, want %d", i, got[i], v)
		}
	}

	rev := Reversed(5)
	revInv := rev.Inverse()
	for i, v := range rev.Sequence() {
		if revInv.Sequence()[i] != v {
			t.Errorf("reversal should be self-inverse, Inverse()[%d] = %d, want %d",
				i, revInv.Sequence()[i], v)
		}
	}

	// Inverse of the inverse is the original.
	back := inv.Inverse()
	for i, v := range pat.Sequence() {
		if back.Sequence()[i] != v {
			t.Errorf("double inverse[%d] = %d, want %d", i, back.Sequence()[i], v)
		}
	}
}

// TestPatternString round-trips through ParsePattern.
func TestPatternString(t *testing.T) {
	pat, err := ParsePattern("3,1,2")
	if err != nil {
		t.Fatal(err)
	}
	if got := pat.String(); got != "3,1,2" {
		t.Errorf("String() = %q, want %q", got, "3,1,2")
	}

	rt, err := ParsePattern(pat.String())
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if rt.String() != pat.String() {
		t.Errorf("round trip = %q, want %q", rt.String(), pat.String())
	}
}
