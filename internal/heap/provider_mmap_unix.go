//go:build unix
// +build unix

package heap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapProvider is a RegionProvider backed by a single anonymous,
// private memory mapping reserved up front. Sbrk advances a
// high-water mark inside that reservation rather than issuing a real
// brk(2) syscall per call, which keeps the heap's backing address
// range stable for the lifetime of the process -- exactly the
// "single contiguous, monotonically growable" region spec §1
// requires.
type mmapProvider struct {
	mem     []byte
	base    unsafe.Pointer
	used    uintptr
	reserve uintptr
}

// NewMmapProvider reserves maxBytes of anonymous memory via mmap(2)
// and returns a RegionProvider over it.
func NewMmapProvider(maxBytes uintptr) (RegionProvider, error) {
	mem, err := unix.Mmap(-1, 0, int(maxBytes), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("heap: mmap reservation of %d bytes failed: %w", maxBytes, err)
	}

	return &mmapProvider{
		mem:     mem,
		base:    unsafe.Pointer(&mem[0]),
		reserve: maxBytes,
	}, nil
}

func (p *mmapProvider) Sbrk(n uintptr) (unsafe.Pointer, error) {
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

func (p *mmapProvider) HeapLo() unsafe.Pointer { return p.base }

func (p *mmapProvider) HeapHi() unsafe.Pointer {
	if p.used == 0 {
		return p.base
	}

	return subAddr(addAddr(p.base, p.used), 1)
}

func (p *mmapProvider) ProviderABIVersion() string { return "1.0.0" }
