package heap

import (
	"testing"
	"unsafe"
)

func newTestAllocator(t *testing.T, backing int) *Allocator {
	t.Helper()

	cfg := DefaultConfig()
	cfg.CheckAfterEveryCall = true

	a, err := New(newFakeProvider(backing), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return a
}

func requireCheck(t *testing.T, a *Allocator, tag string) {
	t.Helper()

	if ok, diags := a.CheckHeap(tag); !ok {
		t.Fatalf("heap invariant violation at %s: %v", tag, diags)
	}
}

func alignedOrFatal(t *testing.T, p unsafe.Pointer) {
	t.Helper()

	if uintptr(p)%16 != 0 {
		t.Fatalf("payload %p not 16-byte aligned", p)
	}
}

// Scenario 1 (spec §8.1): allocate two blocks, free both; the
// combined region becomes a single free block, list-heap parity
// holds, the mini list is empty, and the class holding the combined
// block contains exactly one block of size >= 48.
func TestScenario_PairAllocateFreeCoalesces(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p1 := a.Allocate(24)
	p2 := a.Allocate(24)
	alignedOrFatal(t, p1)
	alignedOrFatal(t, p2)

	a.Free(p1)
	a.Free(p2)
	requireCheck(t, a, "after pair free")

	if n := a.mini.count(); n != 0 {
		t.Fatalf("expected empty mini list, got %d entries", n)
	}

	class := indexFor(48)
	found := 0
	for b := a.seg.heads[class]; b != nil; b = readPtr(nextFieldAddr(b)) {
		if blockSize(headerAt(b)) >= 48 {
			found++
		}
	}

	if found != 1 {
		t.Fatalf("expected exactly one coalesced block of size >= 48 in class %d, found %d", class, found)
	}
}

// Scenario 2 (spec §8.2): an 8-byte request becomes a mini block;
// freeing it leaves exactly one entry on the mini list and adds
// nothing to the segregated lists. A second allocation follows it so
// the freed mini block has no free neighbor to coalesce with.
func TestScenario_TinyAllocationIsMini(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p := a.Allocate(8)
	alignedOrFatal(t, p)

	b := blockFromPayload(p)
	if got := blockSize(headerAt(b)); got != miniSize {
		t.Fatalf("expected mini block, got size %d", got)
	}

	if guard := a.Allocate(8); guard == nil {
		t.Fatal("guard allocation failed")
	}

	segBefore := a.seg.count()

	a.Free(p)
	requireCheck(t, a, "after mini free")

	if n := a.mini.count(); n != 1 {
		t.Fatalf("expected 1 mini block, got %d", n)
	}

	if n := a.seg.count(); n != segBefore {
		t.Fatalf("expected %d segregated-list entries, got %d", segBefore, n)
	}
}

// Scenario 3 (spec §8.3): a 4000-byte allocation, once freed, lands
// in size class 8 (upper bound 4096).
func TestScenario_MidSizeFreeLandsInClass8(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p := a.Allocate(4000)
	a.Free(p)
	requireCheck(t, a, "after mid-size free")

	if a.seg.heads[8] == nil {
		t.Fatalf("expected class 8 to receive the freed block")
	}
}

// Scenario 4 (spec §8.4): reallocate preserves the first min(n, old)
// bytes.
func TestScenario_ReallocatePreservesContent(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p := a.Allocate(100)
	buf := unsafe.Slice((*byte)(p), 100)
	for i := range buf {
		buf[i] = byte(i)
	}

	q := a.Reallocate(p, 200)
	if q == nil {
		t.Fatal("reallocate returned nil")
	}

	grown := unsafe.Slice((*byte)(q), 200)
	for i := 0; i < 100; i++ {
		if grown[i] != byte(i) {
			t.Fatalf("byte %d corrupted across reallocate: got %d want %d", i, grown[i], byte(i))
		}
	}

	requireCheck(t, a, "after reallocate")
}

// Scenario 5 (spec §8.5): zero count and multiplicative overflow both
// yield nil from Callocate.
func TestScenario_CallocateZeroAndOverflow(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	if p := a.Callocate(0, 100); p != nil {
		t.Fatalf("Callocate(0, 100) = %p, want nil", p)
	}

	if p := a.Callocate(1<<40, 1<<40); p != nil {
		t.Fatalf("Callocate(1<<40, 1<<40) = %p, want nil", p)
	}
}

func TestCallocateZeroesPayload(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p := a.Allocate(64)
	buf := unsafe.Slice((*byte)(p), 64)
	for i := range buf {
		buf[i] = 0xFF
	}

	a.Free(p)

	q := a.Callocate(8, 8)
	if q == nil {
		t.Fatal("Callocate returned nil")
	}

	zeroed := unsafe.Slice((*byte)(q), 64)
	for i, b := range zeroed {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, b)
		}
	}
}

// Scenario 6 (spec §8, concrete scenario 6): a fill/release pattern
// over 1000 blocks of varying size ends with exactly one free block
// spanning the whole allocable region, sitting in class 9.
func TestScenario_FillReleasePattern(t *testing.T) {
	a := newTestAllocator(t, 8<<20)

	const count = 1000

	ptrs := make([]unsafe.Pointer, count)
	for i := 0; i < count; i++ {
		size := uintptr(16 + (i%128)*16) // 16..2048 in 16-byte steps
		ptrs[i] = a.Allocate(size)

		if ptrs[i] == nil {
			t.Fatalf("allocate %d failed", i)
		}
	}

	requireCheck(t, a, "after fill")

	for i := 0; i < count; i += 2 {
		a.Free(ptrs[i])
	}

	requireCheck(t, a, "after releasing evens")

	for i := 1; i < count; i += 2 {
		a.Free(ptrs[i])
	}

	requireCheck(t, a, "after releasing all")

	freeBlocks := 0
	var spanSize uint64

	a.Walk(func(v BlockView) bool {
		if !v.Allocated {
			freeBlocks++
			spanSize = v.Size
		}

		return true
	})

	if freeBlocks != 1 {
		t.Fatalf("expected exactly one free block after releasing everything, got %d", freeBlocks)
	}

	if indexFor(spanSize) != 9 {
		t.Fatalf("expected the single free block to sit in class 9, size %d maps to class %d", spanSize, indexFor(spanSize))
	}
}

func TestFreeNilIsNoOp(t *testing.T) {
	a := newTestAllocator(t, 1<<16)
	a.Free(nil) // must not panic
	requireCheck(t, a, "after freeing nil")
}

func TestReallocateNilIsAllocate(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p := a.Reallocate(nil, 32)
	if p == nil {
		t.Fatal("reallocate(nil, n) returned nil")
	}

	alignedOrFatal(t, p)
}

func TestReallocateToZeroFrees(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	p := a.Allocate(32)

	q := a.Reallocate(p, 0)
	if q != nil {
		t.Fatalf("reallocate(p, 0) = %p, want nil", q)
	}

	requireCheck(t, a, "after reallocate-to-zero")
}

func TestAllocateZeroReturnsNil(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	if p := a.Allocate(0); p != nil {
		t.Fatalf("Allocate(0) = %p, want nil", p)
	}
}

func TestNoOverlapBetweenLiveAllocations(t *testing.T) {
	a := newTestAllocator(t, 1<<16)

	sizes := []uintptr{16, 24, 100, 4000, 8, 500}
	spans := make([][2]uintptr, 0, len(sizes))

	for _, size := range sizes {
		p := a.Allocate(size)
		if p == nil {
			t.Fatalf("allocate(%d) failed", size)
		}

		start := uintptr(p)
		spans = append(spans, [2]uintptr{start, start + size})
	}

	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}

			if spans[i][0] < spans[j][1] && spans[j][0] < spans[i][1] {
				t.Fatalf("allocations %d and %d overlap: %v vs %v", i, j, spans[i], spans[j])
			}
		}
	}
}
