package heap

import "unsafe"

// nextBlock returns the block immediately following b in address
// order. It must not be called on the epilogue.
func nextBlock(b unsafe.Pointer) unsafe.Pointer {
	return addAddr(b, uintptr(blockSize(headerAt(b))))
}

// prevBlock returns the block immediately preceding b in address
// order. It is only valid when b's prev-alloc bit is false; callers
// must check that before calling.
func prevBlock(b unsafe.Pointer) unsafe.Pointer {
	w := headerAt(b)
	if isPrevMini(w) {
		return subAddr(b, miniSize)
	}

	footer := *(*uint64)(subAddr(b, footerSize))
	return subAddr(b, uintptr(blockSize(footer)))
}

// BlockView is a read-only snapshot of one block, handed to callers
// of Walk. It exists so an external pretty-printer (out of scope for
// this module, see spec §1) has something to introspect without
// reaching into heap internals directly.
type BlockView struct {
	Addr      unsafe.Pointer
	Size      uint64
	Allocated bool
	PrevAlloc bool
	PrevMini  bool
}

// Walk invokes fn once per block in address order, starting just
// after the prologue and stopping at (and not including) the
// epilogue. Iteration stops early if fn returns false. Walk performs
// no allocation and no I/O.
func (a *Allocator) Walk(fn func(BlockView) bool) {
	b := a.firstBlockAddr()
	for {
		w := headerAt(b)
		if isEpilogueWord(w) {
			return
		}

		view := BlockView{
			Addr:      payloadAddr(b),
			Size:      blockSize(w),
			Allocated: isAllocated(w),
			PrevAlloc: isPrevAlloc(w),
			PrevMini:  isPrevMini(w),
		}

		if !fn(view) {
			return
		}

		b = nextBlock(b)
	}
}
