//go:build !unix && !windows
// +build !unix,!windows

package heap

import (
	"fmt"
	"unsafe"
)

// fallbackProvider is a pure-Go RegionProvider for platforms without
// a dedicated mmap/VirtualAlloc binding. It reserves its backing
// store as a single Go byte slice, the same placeholder strategy the
// teacher's allocateSystemMemory uses (internal/runtime/
// region_alloc.go) before falling back to a real syscall.
type fallbackProvider struct {
	mem     []byte
	base    unsafe.Pointer
	used    uintptr
	reserve uintptr
}

// NewMmapProvider reserves maxBytes from the Go heap and returns a
// RegionProvider over it.
func NewMmapProvider(maxBytes uintptr) (RegionProvider, error) {
	mem := make([]byte, maxBytes)

	return &fallbackProvider{
		mem:     mem,
		base:    unsafe.Pointer(&mem[0]),
		reserve: maxBytes,
	}, nil
}

func (p *fallbackProvider) Sbrk(n uintptr) (unsafe.Pointer, error) {
	if n == 0 {
		return addAddr(p.base, p.used), nil
	}

	if p.used+n > p.reserve {
		return nil, fmt.Errorf("heap: provider exhausted: %d bytes requested, %d remaining", n, p.reserve-p.used)
	}

	addr := addAddr(p.base, p.used)
	p.used += n

	return addr, nil
}

func (p *fallbackProvider) HeapLo() unsafe.Pointer { return p.base }

func (p *fallbackProvider) HeapHi() unsafe.Pointer {
	if p.used == 0 {
		return p.base
	}

	return subAddr(addAddr(p.base, p.used), 1)
}

func (p *fallbackProvider) ProviderABIVersion() string { return "1.0.0" }
