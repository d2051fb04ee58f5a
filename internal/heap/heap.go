package heap

import (
	"fmt"
	"unsafe"
)

// Allocator is a segregated-fit heap allocator managing a single
// contiguous, monotonically growable region obtained from a
// RegionProvider (spec §6). It assumes single-threaded use -- see
// spec §5 -- and carries no internal locking.
//
// Unlike spec.md's "process-wide state" framing, this module follows
// the teacher's convention of an explicit, constructed instance
// rather than package-level globals (internal/runtime's
// RegionAllocator/BlockManager are likewise always constructed, never
// ambient). A program that wants spec.md's literal process-wide
// semantics holds exactly one *Allocator for its lifetime, which
// New's caller is free to do.
type Allocator struct {
	provider RegionProvider
	cfg      Config

	prologue unsafe.Pointer
	epilogue unsafe.Pointer

	mini miniList
	seg  segLists

	stats   statsCounters
	lastErr *HeapError
}

// New constructs an Allocator over provider, installing the
// prologue/epilogue sentinels and performing the initial chunk-sized
// extension (spec §4.9's init()). It corresponds to spec §6.2's
// init() and must succeed before any Allocate/Free call.
func New(provider RegionProvider, cfg Config) (*Allocator, error) {
	if err := checkProviderABI(provider); err != nil {
		return nil, err
	}

	base, err := provider.Sbrk(2 * headerSize)
	if err != nil {
		return nil, fmt.Errorf("heap: init: provider could not supply sentinel words: %w", err)
	}

	a := &Allocator{provider: provider, cfg: cfg}
	a.prologue = base
	a.epilogue = addAddr(base, headerSize)

	setHeaderAt(a.prologue, packHeader(0, true, false, false))
	setHeaderAt(a.epilogue, packHeader(0, true, true, false))

	if grown := a.extend(cfg.ChunkSize); grown == nil {
		if a.lastErr != nil {
			return nil, a.lastErr
		}

		return nil, newHeapError(ErrCodeProviderFailure, uint64(cfg.ChunkSize), "initial extend failed")
	}

	return a, nil
}

// firstBlockAddr returns the address of the block immediately
// following the prologue. The prologue never moves, so this is
// stable for the Allocator's whole lifetime regardless of how many
// times the heap has grown or been coalesced.
func (a *Allocator) firstBlockAddr() unsafe.Pointer {
	return addAddr(a.prologue, headerSize)
}

func roundUp16(n uintptr) uintptr { return (n + 15) &^ 15 }

// adjustedSize computes the block size needed to satisfy a user
// request of n bytes: spec §6.2's asize = round_up(n + 8, 16), floored
// at the 16-byte mini size.
func adjustedSize(n uintptr) uintptr {
	asize := roundUp16(n + headerSize)
	if asize < miniSize {
		asize = miniSize
	}

	return asize
}

// extend grows the heap by n bytes (rounded up to a multiple of 16),
// installs a new epilogue, and coalesces the newly-grown region with
// whatever free block preceded the old epilogue (spec §4.9). Returns
// the resulting free block, or nil if the provider could not supply
// the memory.
func (a *Allocator) extend(n uintptr) unsafe.Pointer {
	n = roundUp16(n)
	if n == 0 {
		n = miniSize
	}

	if a.cfg.MaxHeapBytes > 0 {
		used := a.stats.heapBytesUsed()
		if used+uint64(n) > uint64(a.cfg.MaxHeapBytes) {
			a.lastErr = newHeapError(ErrCodeExhausted, uint64(n), "heap growth capped at MaxHeapBytes=%d (already at %d)", a.cfg.MaxHeapBytes, used)
			a.stats.recordFailedAlloc()

			return nil
		}
	}

	oldEpilogue := a.epilogue
	oldWord := headerAt(oldEpilogue)

	addr, err := a.provider.Sbrk(n)
	if err != nil {
		a.lastErr = newHeapError(ErrCodeExhausted, uint64(n), "provider exhausted: %v", err)
		a.stats.recordFailedAlloc()

		return nil
	}

	// The new bytes start just past the old epilogue word, so the new
	// block's header takes over that word.
	newBlock := subAddr(addr, headerSize)
	rawWriteHeader(newBlock, uint64(n), false, isPrevAlloc(oldWord), isPrevMini(oldWord))

	newEpilogue := addAddr(newBlock, n)
	setHeaderAt(newEpilogue, packHeader(0, true, false, uint64(n) == miniSize))
	a.epilogue = newEpilogue

	merged := a.coalesce(newBlock)
	a.stats.recordExtend(uint64(n))

	return merged
}

// Allocate implements spec §6.2's allocate(n): size the request, find
// (or make, via extend) a fitting free block, unlink it, mark it
// allocated, split off any usable trailing remainder, and return the
// payload address. Returns nil if n == 0 or the provider is
// exhausted.
func (a *Allocator) Allocate(n uintptr) unsafe.Pointer {
	if n == 0 {
		a.lastErr = newHeapError(ErrCodeInvalidSize, 0, "zero-byte allocation")
		return nil
	}

	asize := adjustedSize(n)

	b := a.findFit(uint64(asize))
	if b == nil {
		growth := asize
		if a.cfg.ChunkSize > growth {
			growth = a.cfg.ChunkSize
		}

		b = a.extend(growth)
		if b == nil {
			return nil
		}
	}

	a.removeFromPool(b, blockSize(headerAt(b)))
	writeBlockPreserve(b, blockSize(headerAt(b)), true)
	a.split(b, uint64(asize))

	a.stats.recordAlloc(uint64(n), blockSize(headerAt(b))-headerSize)

	if a.cfg.CheckAfterEveryCall {
		a.assertInvariants("after allocate")
	}

	return payloadAddr(b)
}

// Free implements spec §6.2's free(p): mark the block free, coalesce
// it with its neighbors, and let coalesce link it into the
// appropriate pool. A nil p is a no-op, matching §6.2's contract.
func (a *Allocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	b := blockFromPayload(p)
	size := blockSize(headerAt(b))

	writeBlockPreserve(b, size, false)
	a.coalesce(b)
	a.stats.recordFree()

	if a.cfg.CheckAfterEveryCall {
		a.assertInvariants("after free")
	}
}

// Reallocate implements spec §6.2's reallocate(p, n), including the
// three special cases (reallocate(nil, n) == Allocate(n);
// reallocate(p, 0) frees p and returns nil; otherwise copy
// min(old, n) bytes) and the supplemented in-place growth avoidance
// of SPEC_FULL.md §4: when the block immediately following p is free
// and large enough, the block is grown and split in place instead of
// allocating, copying, and freeing.
func (a *Allocator) Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	if p == nil {
		return a.Allocate(n)
	}

	if n == 0 {
		a.Free(p)
		return nil
	}

	b := blockFromPayload(p)
	curSize := blockSize(headerAt(b))
	asize := adjustedSize(n)

	if uint64(asize) <= curSize {
		return p
	}

	if grown := a.tryGrowInPlace(b, curSize, asize); grown {
		if a.cfg.CheckAfterEveryCall {
			a.assertInvariants("after reallocate (in place)")
		}

		return p
	}

	q := a.Allocate(n)
	if q == nil {
		// Provider exhausted: leave the original block untouched,
		// per spec §7.
		return nil
	}

	oldPayload := curSize - headerSize
	copySize := uintptr(oldPayload)
	if n < copySize {
		copySize = n
	}

	copyBytes(q, p, copySize)
	a.Free(p)

	return q
}

func (a *Allocator) tryGrowInPlace(b unsafe.Pointer, curSize uint64, asize uintptr) bool {
	next := nextBlock(b)
	nw := headerAt(next)

	if isAllocated(nw) {
		return false
	}

	nSize := blockSize(nw)
	if curSize+nSize < uint64(asize) {
		return false
	}

	a.removeFromPool(next, nSize)

	w := headerAt(b)
	rawWriteHeader(b, curSize+nSize, true, isPrevAlloc(w), isPrevMini(w))
	propagateToNext(b)
	a.split(b, uint64(asize))

	return true
}

// Callocate implements spec §6.2's callocate(k, n): a zero-initialized
// allocation of k*n bytes, returning nil on a zero count or on
// multiplicative overflow.
func (a *Allocator) Callocate(k, n uintptr) unsafe.Pointer {
	if k == 0 {
		a.lastErr = newHeapError(ErrCodeInvalidSize, 0, "zero-count callocate")
		return nil
	}

	total := k * n
	if n != 0 && total/n != k {
		a.lastErr = newHeapError(ErrCodeOverflow, uint64(n), "callocate(%d, %d) overflows", k, n)
		return nil
	}

	p := a.Allocate(total)
	if p == nil {
		return nil
	}

	b := blockFromPayload(p)
	payloadSize := blockSize(headerAt(b)) - headerSize
	zeroBytes(p, payloadSize)

	return p
}

// LastError returns the most recent internal failure recorded by the
// allocator (typically provider exhaustion), or nil if none occurred.
func (a *Allocator) LastError() *HeapError { return a.lastErr }

// Stats returns a snapshot of the allocator's running statistics.
func (a *Allocator) Stats() Stats { return a.stats.snapshot() }

func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	if n == 0 {
		return
	}

	d := unsafe.Slice((*byte)(dst), int(n))
	s := unsafe.Slice((*byte)(src), int(n))
	copy(d, s)
}

func zeroBytes(p unsafe.Pointer, n uint64) {
	if n == 0 {
		return
	}

	s := unsafe.Slice((*byte)(p), int(n))
	for i := range s {
		s[i] = 0
	}
}
