// Package heap implements a segregated-fit dynamic memory allocator
// managing a single contiguous, monotonically growable heap region
// obtained from a RegionProvider.
package heap

import "unsafe"

// Every block in the heap begins with an 8-byte header: three status
// bits in the low nibble, and the block size (always a multiple of
// 16) in the remaining bits.
const (
	wordSize   = 8
	headerSize = wordSize
	footerSize = wordSize

	// miniSize is the size, in bytes, of the smallest block the
	// allocator ever hands out. Blocks of exactly this size carry no
	// footer and no prev pointer; they live on the mini list instead
	// of a segregated class.
	miniSize = 16

	// minFreeSize is the smallest size a non-mini free block may
	// have: header + next + prev + footer.
	minFreeSize = 32
)

const (
	allocBit     uint64 = 1 << 0
	prevAllocBit uint64 = 1 << 1
	prevMiniBit  uint64 = 1 << 2
	sizeMask     uint64 = ^uint64(0xF)
)

// packHeader encodes a header/footer word from its four logical
// fields. size must already be a multiple of 16.
func packHeader(size uint64, alloc, prevAlloc, prevMini bool) uint64 {
	w := size & sizeMask
	if alloc {
		w |= allocBit
	}

	if prevAlloc {
		w |= prevAllocBit
	}

	if prevMini {
		w |= prevMiniBit
	}

	return w
}

func blockSize(w uint64) uint64    { return w & sizeMask }
func isAllocated(w uint64) bool    { return w&allocBit != 0 }
func isPrevAlloc(w uint64) bool    { return w&prevAllocBit != 0 }
func isPrevMini(w uint64) bool     { return w&prevMiniBit != 0 }
func isEpilogueWord(w uint64) bool { return blockSize(w) == 0 && isAllocated(w) }

// addAddr and subAddr perform pointer arithmetic on raw heap
// addresses. The heap region is memory obtained from a RegionProvider
// (see provider.go) that stays at a fixed address: an mmap or
// VirtualAlloc reservation, or a Go byte slice the provider keeps
// alive, which Go never moves. So representing block addresses as
// unsafe.Pointer and moving between unsafe.Pointer and uintptr here
// is safe: nothing ever relocates this memory out from under us.
func addAddr(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(p) + n)
}

func subAddr(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(p) - n)
}

func headerAt(b unsafe.Pointer) uint64        { return *(*uint64)(b) }
func setHeaderAt(b unsafe.Pointer, w uint64)  { *(*uint64)(b) = w }
func footerAddr(b unsafe.Pointer, size uint64) unsafe.Pointer {
	return addAddr(b, uintptr(size)-footerSize)
}
func setFooterAt(b unsafe.Pointer, size uint64, w uint64) {
	*(*uint64)(footerAddr(b, size)) = w
}
func footerAt(b unsafe.Pointer, size uint64) uint64 {
	return *(*uint64)(footerAddr(b, size))
}

func payloadAddr(b unsafe.Pointer) unsafe.Pointer      { return addAddr(b, headerSize) }
func blockFromPayload(p unsafe.Pointer) unsafe.Pointer { return subAddr(p, headerSize) }

// Free-block pointer fields. Mini blocks only ever use nextFieldAddr;
// prevFieldAddr is only valid for non-mini free blocks (size >= 32).
func nextFieldAddr(b unsafe.Pointer) unsafe.Pointer { return addAddr(b, wordSize) }
func prevFieldAddr(b unsafe.Pointer) unsafe.Pointer { return addAddr(b, 2*wordSize) }

func readPtr(fieldAddr unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(*(*uint64)(fieldAddr)))
}

func writePtr(fieldAddr unsafe.Pointer, v unsafe.Pointer) {
	*(*uint64)(fieldAddr) = uint64(uintptr(v))
}

// rawWriteHeader writes b's header (and, for a free non-mini block,
// its footer) without touching any other block. It does not update
// the neighboring block that now follows b -- see propagateToNext.
func rawWriteHeader(b unsafe.Pointer, size uint64, alloc, prevAlloc, prevMini bool) {
	w := packHeader(size, alloc, prevAlloc, prevMini)
	setHeaderAt(b, w)

	if !alloc && size >= minFreeSize {
		setFooterAt(b, size, w)
	}
}

// propagateToNext implements point 3 of the write-block contract
// (spec §4.7): after b's own header/footer has been written, the
// block physically following b must have its prev-alloc and
// prev-mini bits updated to describe b, and if that following block
// is itself a free non-mini block its footer must be kept identical
// to its header.
func propagateToNext(b unsafe.Pointer) {
	w := headerAt(b)
	size := blockSize(w)
	alloc := isAllocated(w)
	mini := size == miniSize

	n := addAddr(b, uintptr(size))
	nw := headerAt(n)

	nSize := blockSize(nw)
	nAlloc := isAllocated(nw)
	updated := packHeader(nSize, nAlloc, alloc, mini)
	setHeaderAt(n, updated)

	if !nAlloc && nSize >= minFreeSize {
		setFooterAt(n, nSize, updated)
	}
}

// writeBlock writes b's header/footer and propagates the resulting
// prev-alloc/prev-mini status to the block that now follows it. This
// is the full write-block contract of spec §4.7.
func writeBlock(b unsafe.Pointer, size uint64, alloc, prevAlloc, prevMini bool) {
	rawWriteHeader(b, size, alloc, prevAlloc, prevMini)
	propagateToNext(b)
}

// writeBlockPreserve rewrites b's size/alloc status in place while
// keeping its existing prev-alloc/prev-mini bits, then propagates.
func writeBlockPreserve(b unsafe.Pointer, size uint64, alloc bool) {
	w := headerAt(b)
	writeBlock(b, size, alloc, isPrevAlloc(w), isPrevMini(w))
}
