package executor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Monitor watches directories during a run and reports activity the run did
// not cause. expected returns true for paths the run itself touches. The
// returned stop function ends the watch and returns the collected notices.
type Monitor interface {
	Start(dirs []string, expected func(path string) bool) (stop func() []string, err error)
}

// DefaultSettleDelay gives pending events time to arrive before a watch stops.
const DefaultSettleDelay = 50 * time.Millisecond

// WatchMonitor is a Monitor backed by fsnotify.
type WatchMonitor struct {
	SettleDelay time.Duration
}

// NewWatchMonitor creates a WatchMonitor with the default settle delay.
func NewWatchMonitor() *WatchMonitor {
	return &WatchMonitor{SettleDelay: DefaultSettleDelay}
}

// Start begins watching dirs.
func (m *WatchMonitor) Start(dirs []string, expected func(path string) bool) (func() []string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var (
		mu      sync.Mutex
		notices []string
		seen    = make(map[string]bool)
		done    = make(chan struct{})
		wg      sync.WaitGroup
	)
	record := func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		if !seen[msg] {
			seen[msg] = true
			notices = append(notices, msg)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if expected != nil && expected(event.Name) {
					continue
				}
				record(fmt.Sprintf("external change during rename: %s %s", event.Op, event.Name))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				record(fmt.Sprintf("watch error: %v", err))
			}
		}
	}()

	var once sync.Once
	stop := func() []string {
		once.Do(func() {
			if m.SettleDelay > 0 {
				time.Sleep(m.SettleDelay)
			}
			close(done)
			wg.Wait()
			watcher.Close()
		})
		mu.Lock()
		defer mu.Unlock()
		out := make([]string, len(notices))
		copy(out, notices)
		sort.Strings(out)
		return out
	}
	return stop, nil
}
