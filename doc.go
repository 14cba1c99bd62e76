// Package weave applies pattern-driven pixel permutations to RGBA buffers.
//
// # Overview
//
// weave rearranges the columns of an image according to a validated
// permutation pattern. The buffer is divided into consecutive vertical slices,
// each pattern-size columns wide; within every complete slice the columns are
// reordered by the pattern, while a trailing partial slice is copied through
// unchanged. The transformation is a pure rearrangement: it never blends,
// scales or resamples, so applying a pattern and then its inverse restores
// the original buffer byte for byte.
//
// # Quick Start
//
//	import weave "github.com/KartikMangalpalli/weave-image-lab"
//
//	// Validate a pattern definition ("which source column feeds
//	// each output column", 1-based).
//	pat, err := weave.ParsePattern("3,1,2")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Apply it to a pixel buffer.
//	eng := weave.NewEngine(weave.WithWorkers(4))
//	out, err := eng.Apply(ctx, src, pat)
//
// # Patterns
//
// A pattern of size S is a permutation of the integers 1..S. Definitions are
// validated on construction (NewPattern, ParsePattern); the Pattern type
// cannot hold an invalid permutation, so Apply never re-checks it. Validation
// failures carry the offending index and value, see PatternError.
//
// # Progress and Cancellation
//
// Apply reports completion after every slice through the WithProgress
// callback, as a monotonically non-decreasing ratio that ends at exactly 1.
// The context passed to Apply is consulted at slice boundaries; cancelling it
// abandons the call and discards the partial output.
//
// # Architecture
//
// The module is organized into:
//   - Public API: Pattern, Pixmap, Engine (this package)
//   - catalog: named pattern storage (memory and file backed) with change
//     notification and portable bundle export
//   - imageio: PNG/JPEG/BMP decoding and encoding to and from Pixmap
//   - internal/parallel: worker pool used by the parallel apply path
package weave

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
