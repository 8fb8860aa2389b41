package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dserve-api/metrics"
	"dserve-api/models"
	"dserve-api/store"
)

type Source interface {
	ListInventory(ctx context.Context, f store.InventoryFilter) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
}

type WatcherConfig struct {
	Interval time.Duration
	Cooldown time.Duration
}

// Watcher delivers each alert once per cooldown. An alert that clears and
// comes back later is delivered again.
type Watcher struct {
	src      Source
	notifier Notifier
	cfg      WatcherConfig
	log      *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewWatcher(src Source, n Notifier, cfg WatcherConfig, log *slog.Logger, m *metrics.Metrics) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 6 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		src:      src,
		notifier: n,
		cfg:      cfg,
		log:      log,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
		sent:     map[string]time.Time{},
	}
}

// Current lists the alerts active right now without notifying anyone.
func (w *Watcher) Current(ctx context.Context) ([]Alert, error) {
	items, err := w.src.ListInventory(ctx, store.InventoryFilter{Kind: models.KindStock})
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	alerts := Scan(items, w.now())
	if alerts == nil {
		alerts = []Alert{}
	}
	return alerts, nil
}

// Check scans all stock and notifies the alerts that are due. It returns
// the alerts it delivered.
func (w *Watcher) Check(ctx context.Context) ([]Alert, error) {
	items, err := w.src.ListInventory(ctx, store.InventoryFilter{Kind: models.KindStock})
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	active := Scan(items, w.now())
	w.forgetCleared(active)
	return w.deliver(ctx, active)
}

// CheckItems is Check restricted to the given inventory ids.
func (w *Watcher) CheckItems(ctx context.Context, ids []string) ([]Alert, error) {
	items := make([]models.InventoryItem, 0, len(ids))
	for _, id := range ids {
		it, err := w.src.GetInventoryItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get inventory %s: %w", id, err)
		}
		items = append(items, *it)
	}
	return w.deliver(ctx, Scan(items, w.now()))
}

// Run checks on every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	sent, err := w.Check(ctx)
	if err != nil {
		w.log.Error("alert scan failed", "err", err)
		return
	}
	if len(sent) > 0 {
		w.log.Info("alerts delivered", "count", len(sent))
	}
}

func (w *Watcher) deliver(ctx context.Context, active []Alert) ([]Alert, error) {
	now := w.now()
	w.mu.Lock()
	var due []Alert
	for _, a := range active {
		if last, ok := w.sent[a.ID]; ok && now.Sub(last) < w.cfg.Cooldown {
			continue
		}
		due = append(due, a)
	}
	w.mu.Unlock()
	if len(due) == 0 {
		return nil, nil
	}

	if err := w.notifier.Notify(ctx, due); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}

	w.mu.Lock()
	for _, a := range due {
		w.sent[a.ID] = now
	}
	w.mu.Unlock()
	for _, a := range due {
		w.metrics.ObserveAlert(string(a.Kind))
	}
	return due, nil
}

func (w *Watcher) forgetCleared(active []Alert) {
	live := make(map[string]bool, len(active))
	for _, a := range active {
		live[a.ID] = true
	}
	w.mu.Lock()
	for id := range w.sent {
		if !live[id] {
			delete(w.sent, id)
		}
	}
	w.mu.Unlock()
}
