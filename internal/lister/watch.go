package lister

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const settleDelay = 200 * time.Millisecond

// Watcher re-lists the assets directory whenever an eligible file is
// created, removed or renamed, and publishes the fresh listing to its
// subscribers.
type Watcher struct {
	lister *Lister
	logger zerolog.Logger

	mu   sync.Mutex
	subs map[chan []Descriptor]struct{}
}

// NewWatcher creates a Watcher over l's directory.
func NewWatcher(l *Lister, logger zerolog.Logger) *Watcher {
	return &Watcher{
		lister: l,
		logger: logger.With().Str("component", "watcher").Logger(),
		subs:   make(map[chan []Descriptor]struct{}),
	}
}

// Subscribe returns a channel receiving each new listing.
func (w *Watcher) Subscribe() chan []Descriptor {
	ch := make(chan []Descriptor, 1)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription channel.
func (w *Watcher) Unsubscribe(ch chan []Descriptor) {
	w.mu.Lock()
	delete(w.subs, ch)
	w.mu.Unlock()
}

// Run watches until ctx is cancelled. Bursts of events are coalesced into a
// single re-list.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.lister.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.lister.Dir(), err)
	}
	w.logger.Info().Str("dir", w.lister.Dir()).Msg("watching assets directory")

	timer := time.NewTimer(settleDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("assets changed")
			timer.Reset(settleDelay)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		case <-timer.C:
			w.refresh()
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return Eligible(filepath.Base(ev.Name))
}

func (w *Watcher) refresh() {
	imgs, err := w.lister.List()
	if err != nil {
		return
	}
	w.publish(imgs)
}

func (w *Watcher) publish(imgs []Descriptor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for ch := range w.subs {
		// Drop a stale pending listing so subscribers only see the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- imgs:
		default:
		}
	}
}
