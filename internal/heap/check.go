package heap

import (
	"fmt"
	"unsafe"
)

// CheckHeap validates every invariant listed in spec §3 in a single
// pass. It is a debug-only routine: calling it is O(heap size), and
// it is meant to be invocable before and after every public call
// during tests (Config.CheckAfterEveryCall wires that up
// automatically). tag is carried only into the returned diagnostics,
// letting a caller note where the check was requested -- the same
// role the original C implementation's mm_checkheap(line) call-site
// argument plays (SPEC_FULL.md §4).
func (a *Allocator) CheckHeap(tag string) (bool, []string) {
	var diags []string

	ok := true
	report := func(format string, args ...any) {
		ok = false
		diags = append(diags, fmt.Sprintf("[%s] %s", tag, fmt.Sprintf(format, args...)))
	}

	lo := uintptr(a.provider.HeapLo())
	hi := uintptr(a.provider.HeapHi())
	inRange := func(p unsafe.Pointer) bool { return uintptr(p) >= lo && uintptr(p) <= hi }

	freeInList := make(map[unsafe.Pointer]bool)

	// Invariants 7 (partial), 8, 10, 11 over the mini list.
	for b := a.mini.head; b != nil; b = readPtr(nextFieldAddr(b)) {
		if !inRange(b) {
			report("mini block %p outside heap range [%#x,%#x]", b, lo, hi)
		}

		next := readPtr(nextFieldAddr(b))
		if next == b {
			report("mini block %p: self-loop", b)
		}

		w := headerAt(b)
		if blockSize(w) != miniSize {
			report("mini block %p: size %d != %d", b, blockSize(w), miniSize)
		}

		if isAllocated(w) {
			report("mini block %p: allocated block present in mini list", b)
		}

		if freeInList[b] {
			report("block %p: appears twice across free lists", b)
		}

		freeInList[b] = true

		if next == b {
			break
		}
	}

	// Invariants 7 (partial), 8, 9, 10, 11 over the segregated lists.
	for class, head := range a.seg.heads {
		for b := head; b != nil; b = readPtr(nextFieldAddr(b)) {
			if !inRange(b) {
				report("seg[%d] block %p outside heap range", class, b)
			}

			next := readPtr(nextFieldAddr(b))
			if next == b {
				report("seg[%d] block %p: self-loop", class, b)
			}

			if next != nil && readPtr(prevFieldAddr(next)) != b {
				report("seg[%d]: %p.next.prev != %p", class, b, b)
			}

			w := headerAt(b)
			if isAllocated(w) {
				report("seg[%d] block %p: allocated block present in free list", class, b)
			}

			size := blockSize(w)
			if size == miniSize {
				report("seg[%d] block %p: mini-sized block in segregated list", class, b)
			}

			if got := indexFor(size); got != class {
				report("block %p: belongs in class %d, found in class %d", b, got, class)
			}

			if size >= minFreeSize && footerAt(b, size) != w {
				report("block %p: footer does not match header", b)
			}

			if freeInList[b] {
				report("block %p: appears twice across free lists", b)
			}

			freeInList[b] = true

			if next == b {
				break
			}
		}
	}

	// Invariants 1-6 over the implicit list, plus cross-checking
	// invariant 7 and 8 against the free-list membership gathered
	// above.
	implicitFreeCount := 0
	prevAllocExpected := true
	prevMiniExpected := false
	prevWasFree := false
	reachedEpilogue := false

	b := a.firstBlockAddr()
	for {
		w := headerAt(b)

		if isEpilogueWord(w) {
			if b != a.epilogue {
				report("implicit list reached an epilogue-shaped word at %p before the recorded epilogue %p", b, a.epilogue)
			}

			reachedEpilogue = true

			break
		}

		size := blockSize(w)
		if size == 0 || size%16 != 0 {
			report("block %p: size %d is not a positive multiple of 16", b, size)
			break // cannot safely keep walking with a bogus size
		}

		if uintptr(payloadAddr(b))%16 != 0 {
			report("block %p: payload not 16-byte aligned", b)
		}

		if isPrevAlloc(w) != prevAllocExpected {
			report("block %p: prev-alloc bit does not match preceding block's status", b)
		}

		if isPrevMini(w) != prevMiniExpected {
			report("block %p: prev-mini bit does not match preceding block", b)
		}

		alloc := isAllocated(w)
		if alloc {
			if freeInList[b] {
				report("block %p: marked allocated but present in a free list", b)
			}
		} else {
			implicitFreeCount++

			if !freeInList[b] {
				report("block %p: free but absent from every free list", b)
			}

			if size >= minFreeSize && footerAt(b, size) != w {
				report("block %p: footer does not match header", b)
			}

			if prevWasFree {
				report("block %p: adjacent to a free predecessor", b)
			}
		}

		prevAllocExpected = alloc
		prevMiniExpected = size == miniSize
		prevWasFree = !alloc

		b = nextBlock(b)
	}

	if !reachedEpilogue {
		report("implicit list never reached the epilogue")
	}

	if implicitFreeCount != len(freeInList) {
		report("list-heap parity violated: %d free blocks in the implicit list vs %d across all free lists", implicitFreeCount, len(freeInList))
	}

	return ok, diags
}

// assertInvariants panics if CheckHeap finds a violation. It is only
// ever called when Config.CheckAfterEveryCall is set, which should
// never be true in a production build.
func (a *Allocator) assertInvariants(tag string) {
	if ok, diags := a.CheckHeap(tag); !ok {
		panic(fmt.Sprintf("heap: invariant violation: %v", diags))
	}
}
