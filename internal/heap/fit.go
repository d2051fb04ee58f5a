package heap

import "unsafe"

// findFit selects a free block able to satisfy an allocation of
// asize bytes, per spec §4.5: mini requests take the mini list's head
// when the mini list is non-empty (safe because every mini block is
// exactly 16 bytes, see the Open Question in spec §9); otherwise --
// including a mini request with an empty mini list, mirroring the
// original mm.c's find_mini_fit falling through to find_fit on a NULL
// result -- a segregated-class search follows, starting at the class
// indexFor(asize) falls into and climbing, with a bounded better-fit
// scan in the class where the first candidate ("anchor") was found.
// Returns nil if no class yields a fit.
func (a *Allocator) findFit(asize uint64) unsafe.Pointer {
	if asize == miniSize && a.mini.head != nil {
		return a.mini.head
	}

	for class := indexFor(asize); class < len(a.seg.heads); class++ {
		anchor := a.firstFitInClass(a.seg.heads[class], asize)
		if anchor == nil {
			continue
		}

		return a.betterFitScan(anchor, asize)
	}

	return nil
}

func (a *Allocator) firstFitInClass(head unsafe.Pointer, asize uint64) unsafe.Pointer {
	for b := head; b != nil; b = readPtr(nextFieldAddr(b)) {
		if blockSize(headerAt(b)) >= asize {
			return b
		}
	}

	return nil
}

// betterFitScan walks up to a.cfg.BetterFitScanLimit further blocks
// past anchor (anchor itself counts as the 0th iteration) and
// returns whichever scanned candidate has the smallest size, ties
// broken by first-seen.
func (a *Allocator) betterFitScan(anchor unsafe.Pointer, asize uint64) unsafe.Pointer {
	best := anchor
	bestSize := blockSize(headerAt(anchor))

	b := anchor
	for i := 0; i < a.cfg.BetterFitScanLimit; i++ {
		b = readPtr(nextFieldAddr(b))
		if b == nil {
			break
		}

		size := blockSize(headerAt(b))
		if size >= asize && size < bestSize {
			best = b
			bestSize = size
		}
	}

	return best
}
