// Package connectivity tracks whether the intake server is reachable.
package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/logging"
)

const (
	DefaultInterval    = 3 * time.Second
	DefaultPingTimeout = 3 * time.Second
)

// Watcher holds the terminal's online flag and refreshes it by pinging the
// server. It starts out online, so the first order placed before any probe
// is attempted live.
type Watcher struct {
	pinger      client.Pinger
	interval    time.Duration
	pingTimeout time.Duration
	logger      logging.Logger

	online atomic.Bool

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(online bool)
}

func NewWatcher(p client.Pinger, interval time.Duration, logger logging.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{
		pinger:      p,
		interval:    interval,
		pingTimeout: DefaultPingTimeout,
		logger:      logger.With("module", "connectivity"),
		listeners:   make(map[int]func(bool)),
	}
	w.online.Store(true)
	return w
}

func (w *Watcher) Online() bool {
	return w.online.Load()
}

// Set records the flag and notifies listeners if it changed.
func (w *Watcher) Set(ctx context.Context, online bool) {
	if w.online.Swap(online) == online {
		return
	}

	mode := "offline"
	if online {
		mode = "online"
	}
	w.logger.Info(ctx, "switched to "+mode+" mode")

	w.mu.Lock()
	fns := make([]func(bool), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// OnChange registers fn to be called on every transition. The returned
// function removes it.
func (w *Watcher) OnChange(fn func(online bool)) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

// Probe pings the server once and updates the flag.
func (w *Watcher) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, w.pingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	if ctx.Err() != nil {
		return w.Online()
	}
	if err != nil {
		w.logger.Debug(ctx, "ping failed", "error", err)
	}
	w.Set(ctx, err == nil)
	return err == nil
}

// Run probes immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Probe(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
