package heap

import "unsafe"

// split carves the trailing remainder off an allocated block b when
// there is enough left over to form a valid block (spec §4.6). b must
// already be marked allocated at its full (pre-split) size when this
// is called.
func (a *Allocator) split(b unsafe.Pointer, asize uint64) {
	oldSize := blockSize(headerAt(b))
	if oldSize-asize < miniSize {
		return
	}

	w := headerAt(b)
	rawWriteHeader(b, asize, true, isPrevAlloc(w), isPrevMini(w))

	remainderSize := oldSize - asize
	r := addAddr(b, uintptr(asize))
	rawWriteHeader(r, remainderSize, false, true, asize == miniSize)

	a.addToPool(r, remainderSize)
	propagateToNext(r)

	a.stats.recordSplit(remainderSize)
}
