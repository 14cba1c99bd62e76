// Package catalog stores named weave pattern definitions.
//
// A single Store interface covers listing, lookup, creation, update and
// deletion, plus change notification through Watch. Two implementations
// ship with the package: MemStore keeps definitions in memory, FileStore
// persists them to a JSON document with atomic rewrites. All pattern
// validation delegates to the weave package; the catalog adds only the
// policy that belongs to it (names and size bounds).
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	weave "github.com/KartikMangalpalli/weave-image-lab"
)

// Size bounds enforced on catalog definitions. The engine itself accepts
// any size of one or more; patterns people keep around are bounded so a
// catalog entry always describes a sensible slice width.
const (
	MinSize = 2
	MaxSize = 24
)

var (
	// ErrNotFound is returned when no definition has the requested ID.
	ErrNotFound = errors.New("catalog: pattern not found")

	// ErrNameRequired is returned when a definition has an empty name
	// after normalization.
	ErrNameRequired = errors.New("catalog: pattern name required")

	// ErrSizeOutOfRange is returned when a definition's size is outside
	// [MinSize, MaxSize].
	ErrSizeOutOfRange = errors.New("catalog: pattern size out of range")

	// ErrNameTaken is returned when another definition already uses the
	// requested name.
	ErrNameTaken = errors.New("catalog: pattern name already in use")
)

// Definition is a stored pattern: a name, a slice size and the 1-based
// column sequence. ID and timestamps are owned by the store.
type Definition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	Sequence  []int     `json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Compile validates the definition's sequence and returns the runnable
// pattern. This is the only path from a stored definition to the engine.
func (d Definition) Compile() (*weave.Pattern, error) {
	return weave.NewPattern(d.Size, d.Sequence)
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	cp := d
	cp.Sequence = append([]int(nil), d.Sequence...)
	return cp
}

// NormalizeName trims surrounding whitespace and applies Unicode NFC, so
// visually identical names compare equal regardless of input encoding.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// validateDefinition normalizes the name in place and checks the catalog
// invariants. Sequence validation is the engine's.
func validateDefinition(def *Definition) error {
	def.Name = NormalizeName(def.Name)
	if def.Name == "" {
		return ErrNameRequired
	}
	if def.Size < MinSize || def.Size > MaxSize {
		return fmt.Errorf("%w: %d", ErrSizeOutOfRange, def.Size)
	}
	if _, err := weave.NewPattern(def.Size, def.Sequence); err != nil {
		return err
	}
	return nil
}

// Op identifies the kind of change a watch event describes.
type Op uint8

const (
	// OpCreate marks a newly created definition.
	OpCreate Op = iota + 1

	// OpUpdate marks a mutated definition.
	OpUpdate

	// OpDelete marks a removed definition. The event carries the
	// definition's last state.
	OpDelete
)

// String returns a string representation of the op.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event describes one committed change to a store.
type Event struct {
	Op         Op
	Definition Definition
}
