package heap

import "unsafe"

// coalesce merges a newly-freed block b with its immediate free
// neighbors (spec §4.8). b must already be marked free via the full
// write-block contract and must not yet be linked into any free
// pool. Returns the (possibly merged) resulting block, already
// pushed into the appropriate pool.
func (a *Allocator) coalesce(b unsafe.Pointer) unsafe.Pointer {
	w := headerAt(b)
	size := blockSize(w)

	prevFree := !isPrevAlloc(w)
	next := nextBlock(b)
	nextFree := !isAllocated(headerAt(next))

	var merged unsafe.Pointer
	var mergedSize uint64
	var prevAlloc, prevMini bool

	switch {
	case !prevFree && !nextFree:
		merged, mergedSize = b, size
		prevAlloc, prevMini = isPrevAlloc(w), isPrevMini(w)

	case !prevFree && nextFree:
		nSize := blockSize(headerAt(next))
		a.removeFromPool(next, nSize)

		merged = b
		mergedSize = size + nSize
		prevAlloc, prevMini = isPrevAlloc(w), isPrevMini(w)

	case prevFree && !nextFree:
		p := prevBlock(b)
		pw := headerAt(p)
		pSize := blockSize(pw)
		a.removeFromPool(p, pSize)

		merged = p
		mergedSize = pSize + size
		prevAlloc, prevMini = isPrevAlloc(pw), isPrevMini(pw)

	default: // both free
		p := prevBlock(b)
		pw := headerAt(p)
		pSize := blockSize(pw)
		a.removeFromPool(p, pSize)

		nSize := blockSize(headerAt(next))
		a.removeFromPool(next, nSize)

		merged = p
		mergedSize = pSize + size + nSize
		prevAlloc, prevMini = isPrevAlloc(pw), isPrevMini(pw)
	}

	if merged != b || mergedSize != size {
		a.stats.recordCoalesce()
	}

	writeBlock(merged, mergedSize, false, prevAlloc, prevMini)
	a.addToPool(merged, mergedSize)

	return merged
}
