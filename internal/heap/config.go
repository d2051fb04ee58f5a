package heap

// Config carries the tunable knobs of the allocator, mirroring the
// teacher's policy-struct convention (internal/runtime's
// RegionPolicy/BlockPolicy) rather than reading from package-level
// globals: every Allocator is constructed with an explicit Config.
type Config struct {
	// ChunkSize is the number of bytes requested from the
	// RegionProvider each time the heap needs to grow and no
	// existing free block can satisfy a request. Rounded up to a
	// multiple of 16.
	ChunkSize uintptr

	// BetterFitScanLimit bounds how many further blocks findFit
	// inspects, past the first anchor, in search of a tighter fit
	// (spec §4.5). The original tunes this to 20.
	BetterFitScanLimit int

	// CheckAfterEveryCall, when true, runs the full invariant
	// checker (check.go) after every public Allocate/Free/
	// Reallocate/Callocate call and panics on violation. Intended
	// for tests and debug builds, never for production use (it is
	// O(heap size) per call).
	CheckAfterEveryCall bool

	// MaxHeapBytes bounds how many total bytes Allocator.extend may
	// request from the RegionProvider over the heap's lifetime; New
	// and every subsequent extend refuse to grow past it, regardless
	// of whether the provider itself has spare capacity. Zero means
	// no allocator-enforced cap (the provider's own limit, if any,
	// still applies). Concrete providers (provider_mmap_*.go) take
	// their own maxBytes reservation at construction time, which
	// callers typically size the same as this field.
	MaxHeapBytes uintptr
}

// DefaultConfig returns the allocator's default tuning, matching
// spec.md's stated constants: a 4096-byte growth chunk and a 20-block
// better-fit scan.
func DefaultConfig() Config {
	return Config{
		ChunkSize:           4096,
		BetterFitScanLimit:  20,
		CheckAfterEveryCall: false,
		MaxHeapBytes:        1 << 30, // 1GiB reservation
	}
}
