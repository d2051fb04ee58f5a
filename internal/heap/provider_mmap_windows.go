//go:build windows
// +build windows

package heap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// winMmapProvider is a RegionProvider backed by a single VirtualAlloc
// reservation, committed up front, mirroring mmapProvider's contract
// on Unix (provider_mmap_unix.go).
type winMmapProvider struct {
	base    unsafe.Pointer
	used    uintptr
	reserve uintptr
}

// NewMmapProvider reserves and commits maxBytes of memory via
// VirtualAlloc and returns a RegionProvider over it.
func NewMmapProvider(maxBytes uintptr) (RegionProvider, error) {
	addr, err := windows.VirtualAlloc(0, maxBytes, windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("heap: VirtualAlloc reservation of %d bytes failed: %w", maxBytes, err)
	}

	return &winMmapProvider{
		base:    unsafe.Pointer(addr),
		reserve: maxBytes,
	}, nil
}

func (p *winMmapProvider) Sbrk(n uintptr) (unsafe.Pointer, error) {
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

func (p *winMmapProvider) HeapLo() unsafe.Pointer { return p.base }

func (p *winMmapProvider) HeapHi() unsafe.Pointer {
	if p.used == 0 {
		return p.base
	}

	return subAddr(addAddr(p.base, p.used), 1)
}

func (p *winMmapProvider) ProviderABIVersion() string { return "1.0.0" }
