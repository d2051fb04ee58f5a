package heap

import "sync/atomic"

// Stats holds a point-in-time snapshot of allocator activity,
// trimmed from the teacher's RegionMetrics (internal/runtime/
// metrics.go) down to the fields meaningful for a single heap with no
// concurrency and no compaction pass.
type Stats struct {
	AllocCount     uint64
	FreeCount      uint64
	ExtendCount    uint64
	SplitCount     uint64
	CoalesceCount  uint64
	BytesRequested uint64 // sum of n passed to Allocate
	BytesGranted   uint64 // sum of payload bytes actually carved out
	HeapBytes      uint64 // current total heap size
	FailedAllocs   uint64
}

// FragmentationRatio estimates external fragmentation as the share of
// heap bytes that are free but were not handed out, relative to the
// whole heap. It is a diagnostic aid, not a correctness property.
func (s Stats) FragmentationRatio() float64 {
	if s.HeapBytes == 0 {
		return 0
	}

	free := s.HeapBytes - s.BytesGranted
	return float64(free) / float64(s.HeapBytes)
}

// statsCounters is the live, atomically-updated counter set backing
// an Allocator's Stats() snapshot. Using sync/atomic here follows the
// teacher's own metrics.go convention even though this allocator is
// documented single-threaded (spec §5): it costs nothing on the
// single-goroutine hot path and keeps the counters consistent with
// the style the rest of the codebase uses for shared state.
type statsCounters struct {
	allocCount     uint64
	freeCount      uint64
	extendCount    uint64
	splitCount     uint64
	coalesceCount  uint64
	bytesRequested uint64
	bytesGranted   uint64
	heapBytes      uint64
	failedAllocs   uint64
}

func (s *statsCounters) recordAlloc(requested, granted uint64) {
	atomic.AddUint64(&s.allocCount, 1)
	atomic.AddUint64(&s.bytesRequested, requested)
	atomic.AddUint64(&s.bytesGranted, granted)
}

func (s *statsCounters) recordFree() { atomic.AddUint64(&s.freeCount, 1) }

func (s *statsCounters) recordExtend(n uint64) {
	atomic.AddUint64(&s.extendCount, 1)
	atomic.AddUint64(&s.heapBytes, n)
}

func (s *statsCounters) heapBytesUsed() uint64 { return atomic.LoadUint64(&s.heapBytes) }

func (s *statsCounters) recordSplit(uint64) { atomic.AddUint64(&s.splitCount, 1) }

func (s *statsCounters) recordCoalesce()    { atomic.AddUint64(&s.coalesceCount, 1) }
func (s *statsCounters) recordFailedAlloc() { atomic.AddUint64(&s.failedAllocs, 1) }

func (s *statsCounters) snapshot() Stats {
	return Stats{
		AllocCount:     atomic.LoadUint64(&s.allocCount),
		FreeCount:      atomic.LoadUint64(&s.freeCount),
		ExtendCount:    atomic.LoadUint64(&s.extendCount),
		SplitCount:     atomic.LoadUint64(&s.splitCount),
		CoalesceCount:  atomic.LoadUint64(&s.coalesceCount),
		BytesRequested: atomic.LoadUint64(&s.bytesRequested),
		BytesGranted:   atomic.LoadUint64(&s.bytesGranted),
		HeapBytes:      atomic.LoadUint64(&s.heapBytes),
		FailedAllocs:   atomic.LoadUint64(&s.failedAllocs),
	}
}
