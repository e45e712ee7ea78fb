package checklist

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads the registry snapshot when template files under dir
// change. Reload failures keep the previous snapshot and log a warning, so a
// half-edited file never breaks running sessions.
type Watcher struct {
	registry *Registry
	dir      string
	debounce time.Duration
	logger   *log.Logger

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the external template dir.
func NewWatcher(registry *Registry, dir string, debounce time.Duration, logger *log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		registry: registry,
		dir:      dir,
		debounce: debounce,
		logger:   logger,
	}
}

// Start begins watching. It returns once the fsnotify watch is registered;
// reloads happen on a background goroutine until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: editors fire bursts of events per save.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("WARN template watcher: %v", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	tpls, err := LoadAll(w.dir)
	if err != nil {
		w.logger.Printf("WARN template reload failed, keeping previous set: %v", err)
		return
	}
	if err := w.registry.Replace(tpls); err != nil {
		w.logger.Printf("WARN template reload rejected, keeping previous set: %v", err)
		return
	}
	w.logger.Printf("INFO reloaded %d checklist template(s) from %s", len(tpls), w.dir)
}

// Stop ends watching and waits for the reload goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.fsw != nil {
		w.fsw.Close()
	}
	w.wg.Wait()
}
