// Command heapbench drives the segregated-fit allocator in
// internal/heap through a synthetic allocation workload and reports
// its resulting statistics. It is outer-surface tooling -- the
// "driver" spec.md §1 lists as a collaborator outside the allocator's
// CORE -- not part of the allocator itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
	"unsafe"

	"github.com/orizon-lang/heapalloc/internal/heap"
)

func main() {
	var (
		ops        = flag.Int("ops", 200000, "number of allocate/free operations to perform")
		maxSize    = flag.Int("max-size", 4096, "maximum single allocation size in bytes")
		maxHeap    = flag.Int64("max-heap", 256<<20, "maximum heap reservation in bytes")
		configPath = flag.String("config", "", "optional config file to read tuning from; later edits are logged (see internal/heap.WatchConfig)")
		checkEvery = flag.Bool("check", false, "run the debug invariant checker after every operation (slow)")
		seed       = flag.Int64("seed", 1, "PRNG seed for the synthetic workload")
	)

	flag.Parse()

	cfg := heap.DefaultConfig()
	cfg.MaxHeapBytes = uintptr(*maxHeap)
	cfg.CheckAfterEveryCall = *checkEvery

	if *configPath != "" {
		watched, updates, stop, err := heap.WatchConfig(*configPath, cfg)
		if err != nil {
			log.Fatalf("heapbench: watching config: %v", err)
		}

		defer stop()

		cfg = watched

		// Reloaded values are logged and stored in cfg only; the
		// allocator keeps the Config it was given by heap.New.
		go func() {
			for updated := range updates {
				log.Printf("heapbench: config reloaded: chunk=%d scan=%d check=%v", updated.ChunkSize, updated.BetterFitScanLimit, updated.CheckAfterEveryCall)
				cfg = updated
			}
		}()
	}

	provider, err := heap.NewMmapProvider(cfg.MaxHeapBytes)
	if err != nil {
		log.Fatalf("heapbench: creating region provider: %v", err)
	}

	alloc, err := heap.New(provider, cfg)
	if err != nil {
		log.Fatalf("heapbench: initializing allocator: %v", err)
	}

	if err := runWorkload(alloc, *ops, *maxSize, *seed); err != nil {
		log.Fatalf("heapbench: %v", err)
	}

	report(alloc)
}

// runWorkload performs a random mix of allocate/free calls,
// maintaining a live set of outstanding pointers so every Free call
// targets a real, still-live allocation.
func runWorkload(alloc *heap.Allocator, ops, maxSize int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	live := make([]unsafe.Pointer, 0, ops)

	for i := 0; i < ops; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			idx := rng.Intn(len(live))
			alloc.Free(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]

			continue
		}

		size := 1 + rng.Intn(maxSize)

		p := alloc.Allocate(uintptr(size))
		if p == nil {
			return fmt.Errorf("allocation of %d bytes failed after %d ops (provider exhausted: %v)", size, i, alloc.LastError())
		}

		live = append(live, p)
	}

	for _, p := range live {
		alloc.Free(p)
	}

	return nil
}

func report(alloc *heap.Allocator) {
	stats := alloc.Stats()

	fmt.Fprintf(os.Stdout, "allocations:        %d\n", stats.AllocCount)
	fmt.Fprintf(os.Stdout, "frees:              %d\n", stats.FreeCount)
	fmt.Fprintf(os.Stdout, "heap extensions:    %d\n", stats.ExtendCount)
	fmt.Fprintf(os.Stdout, "splits:             %d\n", stats.SplitCount)
	fmt.Fprintf(os.Stdout, "coalesces:          %d\n", stats.CoalesceCount)
	fmt.Fprintf(os.Stdout, "heap size:          %d bytes\n", stats.HeapBytes)
	fmt.Fprintf(os.Stdout, "bytes granted:      %d\n", stats.BytesGranted)
	fmt.Fprintf(os.Stdout, "fragmentation:      %.2f%%\n", stats.FragmentationRatio()*100)
	fmt.Fprintf(os.Stdout, "finished at:        %s\n", time.Now().Format(time.RFC3339))
}
