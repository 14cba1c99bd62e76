package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Bundle container: magic, one version byte, then a zstd frame holding a
// JSON array of definitions.
const (
	bundleMagic   = "WEAVEBNDL\n"
	bundleVersion = 1
)

// ErrInvalidBundle is returned when a bundle's header or payload cannot
// be understood.
var ErrInvalidBundle = errors.New("catalog: invalid bundle")

// ExportBundle writes defs to w as a portable bundle.
func ExportBundle(w io.Writer, defs []Definition) error {
	if _, err := io.WriteString(w, bundleMagic); err != nil {
		return fmt.Errorf("catalog: write bundle header: %w", err)
	}
	if _, err := w.Write([]byte{bundleVersion}); err != nil {
		return fmt.Errorf("catalog: write bundle header: %w", err)
	}

	payload, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("catalog: encode bundle: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("catalog: compress bundle: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		enc.Close()
		return fmt.Errorf("catalog: compress bundle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("catalog: compress bundle: %w", err)
	}
	return nil
}

// ImportBundle reads a bundle written by ExportBundle and returns its
// definitions, each validated. Imported definitions keep their names and
// sequences; stores assign fresh IDs and timestamps on insertion.
func ImportBundle(r io.Reader) ([]Definition, error) {
	magic := make([]byte, len(bundleMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("catalog: read bundle header: %w", err)
	}
	if string(magic) != bundleMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidBundle)
	}

	var version [1]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, fmt.Errorf("catalog: read bundle header: %w", err)
	}
	if version[0] != bundleVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidBundle, version[0])
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: decompress bundle: %w", err)
	}
	defer dec.Close()

	payload, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("catalog: decompress bundle: %w", err)
	}

	var defs []Definition
	if err := json.Unmarshal(payload, &defs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	for i := range defs {
		if err := validateDefinition(&defs[i]); err != nil {
			return nil, fmt.Errorf("catalog: bundle entry %d (%q): %w", i, defs[i].Name, err)
		}
	}
	return defs, nil
}
