package heap

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// tunableFile is the on-disk shape WatchConfig reads and re-reads.
// Only the fields safe to change on a live allocator are exposed:
// ChunkSize and BetterFitScanLimit affect only future Extend/findFit
// calls, and CheckAfterEveryCall only toggles a debug assertion.
// MaxHeapBytes is fixed at provider-construction time and is not
// reloadable.
type tunableFile struct {
	ChunkSize           uintptr `json:"chunk_size"`
	BetterFitScanLimit  int     `json:"better_fit_scan_limit"`
	CheckAfterEveryCall *bool   `json:"check_after_every_call"`
}

func readTunableFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("heap: reading config %s: %w", path, err)
	}

	var t tunableFile
	if err := json.Unmarshal(data, &t); err != nil {
		return base, fmt.Errorf("heap: parsing config %s: %w", path, err)
	}

	cfg := base
	if t.ChunkSize > 0 {
		cfg.ChunkSize = t.ChunkSize
	}

	if t.BetterFitScanLimit > 0 {
		cfg.BetterFitScanLimit = t.BetterFitScanLimit
	}

	if t.CheckAfterEveryCall != nil {
		cfg.CheckAfterEveryCall = *t.CheckAfterEveryCall
	}

	return cfg, nil
}

// WatchConfig reads path once for an initial Config (layered over
// base for any field the file omits) and starts watching it for
// writes, mirroring the teacher's internal/runtime/vfs/
// watch_fsnotify.go use of fsnotify for live config reload. The
// returned channel receives a new Config each time path is rewritten
// and re-read successfully, and is closed when stop is called. A
// rewrite that cannot be read or parsed is skipped, and an update is
// dropped while an earlier one is still waiting in the channel's
// one-slot buffer. This is a convenience for
// long-running sessions of cmd/heapbench; the CORE allocator itself
// never depends on fsnotify.
func WatchConfig(path string, base Config) (cfg Config, updates <-chan Config, stop func() error, err error) {
	cfg, err = readTunableFile(path, base)
	if err != nil {
		return Config{}, nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("heap: creating config watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return Config{}, nil, nil, fmt.Errorf("heap: watching %s: %w", path, err)
	}

	ch := make(chan Config, 1)

	go func() {
		defer close(ch)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				updated, err := readTunableFile(path, base)
				if err != nil {
					continue
				}

				select {
				case ch <- updated:
				default:
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return cfg, ch, watcher.Close, nil
}
