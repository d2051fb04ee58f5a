package heap

import (
	"unsafe"

	"github.com/Masterminds/semver/v3"
)

// RegionProvider is the external collaborator (spec §6.1) that grows
// the process heap and reports its current bounds. The allocator
// never returns memory to it; it only ever calls Sbrk with a
// positive n.
type RegionProvider interface {
	// Sbrk extends the region by n bytes and returns the address of
	// the newly-added bytes, or an error if the provider is
	// exhausted. n may be zero to query the current break without
	// growing.
	Sbrk(n uintptr) (unsafe.Pointer, error)

	// HeapLo returns the lowest address currently in the region.
	HeapLo() unsafe.Pointer

	// HeapHi returns the highest address currently in the region
	// (inclusive).
	HeapHi() unsafe.Pointer

	// ProviderABIVersion declares the provider's semver-formatted
	// compatibility version, checked against ProviderABIConstraint
	// by New.
	ProviderABIVersion() string
}

// ProviderABIConstraint is the range of RegionProvider ABI versions
// this allocator knows how to drive. Providers that declare a major
// version outside this range are rejected by New, the same guard the
// teacher's packagemanager package applies to registry/package
// version compatibility.
const ProviderABIConstraint = ">= 1.0.0, < 2.0.0"

func checkProviderABI(p RegionProvider) error {
	constraint, err := semver.NewConstraint(ProviderABIConstraint)
	if err != nil {
		return newHeapError(ErrCodeProviderFailure, 0, "invalid ABI constraint: %v", err)
	}

	version, err := semver.NewVersion(p.ProviderABIVersion())
	if err != nil {
		return newHeapError(ErrCodeProviderFailure, 0, "provider declares invalid ABI version %q: %v", p.ProviderABIVersion(), err)
	}

	if !constraint.Check(version) {
		return newHeapError(ErrCodeProviderFailure, 0, "provider ABI version %s does not satisfy %s", version, ProviderABIConstraint)
	}

	return nil
}
