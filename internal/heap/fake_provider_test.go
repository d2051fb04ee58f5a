package heap

import (
	"fmt"
	"unsafe"
)

// fakeProvider is a portable, GOOS-independent RegionProvider backed
// by a single pinned Go byte slice, used by tests that want
// deterministic behavior without depending on a real OS mapping
// (provider_mmap_unix.go et al. are exercised separately in
// cmd/heapbench). Mirrors the teacher's TestAllocator test-harness
// convention of hand-rolling a small stand-in rather than mocking
// every collaborator (internal/runtime/region_test.go).
type fakeProvider struct {
	mem  []byte
	used uintptr
}

func newFakeProvider(size int) *fakeProvider {
	return &fakeProvider{mem: make([]byte, size)}
}

func (p *fakeProvider) Sbrk(n uintptr) (unsafe.Pointer, error) {
	if n == 0 {
		if p.used >= uintptr(len(p.mem)) {
			return unsafe.Pointer(&p.mem[len(p.mem)-1]), nil
		}

		return unsafe.Pointer(&p.mem[p.used]), nil
	}

	if p.used+n > uintptr(len(p.mem)) {
		return nil, fmt.Errorf("fake provider exhausted: %d requested, %d remaining", n, uintptr(len(p.mem))-p.used)
	}

	addr := unsafe.Pointer(&p.mem[p.used])
	p.used += n

	return addr, nil
}

func (p *fakeProvider) HeapLo() unsafe.Pointer { return unsafe.Pointer(&p.mem[0]) }

func (p *fakeProvider) HeapHi() unsafe.Pointer {
	if p.used == 0 {
		return unsafe.Pointer(&p.mem[0])
	}

	return unsafe.Pointer(&p.mem[p.used-1])
}

func (p *fakeProvider) ProviderABIVersion() string { return "1.0.0" }
