// Package queue implements the offline order queue: orders that could not be
// delivered are persisted through the local store and replayed to the server
// by SyncPendingOrders, with a bounded number of attempts per order.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/google/uuid"
)

// OrderStore is the part of the local store the manager works with.
type OrderStore interface {
	SaveOrder(ctx context.Context, o *models.QueuedOrder) error
	GetPendingOrders(ctx context.Context) ([]*models.QueuedOrder, error)
	GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]*models.QueuedOrder, error)
	CountOrders(ctx context.Context, status models.OrderStatus) (int, error)
	MarkSynced(ctx context.Context, id, serverID string, at time.Time) error
	RecordFailure(ctx context.Context, id, cause string, maxRetries int) (*models.QueuedOrder, error)
	DeleteFailedOrders(ctx context.Context, ids []string) (int, error)
	GetStats(ctx context.Context) (models.QueueStats, error)
}

// Sender delivers one order and returns the server-assigned id.
type Sender interface {
	Send(ctx context.Context, clientRef string, payload json.RawMessage) (string, error)
}

// Archiver keeps a copy of failed orders before they are deleted.
type Archiver interface {
	Archive(ctx context.Context, orders []*models.QueuedOrder) error
}

type Option func(*Manager)

func WithMaxRetries(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetries = n
		}
	}
}

func WithArchiver(a Archiver) Option {
	return func(m *Manager) { m.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(f func() (string, error)) Option {
	return func(m *Manager) { m.newID = f }
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Manager struct {
	store      OrderStore
	sender     Sender
	archiver   Archiver
	logger     logging.Logger
	maxRetries int
	now        func() time.Time
	newID      func() (string, error)

	mu      sync.Mutex
	syncing bool

	subMu     sync.Mutex
	nextSubID int
	listeners map[int]func(models.SyncSummary)
}

func NewManager(store OrderStore, sender Sender, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		sender:     sender,
		logger:     logger.With("module", "queue"),
		maxRetries: models.DefaultMaxRetries,
		now:        time.Now,
		newID:      newUUIDv7,
		listeners:  make(map[int]func(models.SyncSummary)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// QueueOrder persists payload as a new pending order and returns its id.
// Nothing is written if the store refuses the record.
func (m *Manager) QueueOrder(ctx context.Context, payload json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return "", fmt.Errorf("empty order payload: %w", common.ErrValidation)
	}

	id, err := m.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate order id: %w", err)
	}
	return m.QueueOrderWithID(ctx, id, payload)
}

// QueueOrderWithID is QueueOrder for callers that already picked the order
// id, typically because it was sent as the client reference of a live
// attempt whose outcome is unknown.
func (m *Manager) QueueOrderWithID(ctx context.Context, id string, payload json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return "", fmt.Errorf("empty order payload: %w", common.ErrValidation)
	}
	if id == "" {
		return "", fmt.Errorf("empty order id: %w", common.ErrValidation)
	}

	o := models.NewQueuedOrder(id, payload, m.now().UnixMilli())
	if err := m.store.SaveOrder(ctx, o); err != nil {
		return "", fmt.Errorf("failed to queue order: %w", err)
	}

	m.logger.Info(ctx, "order queued", "order_id", id)
	return id, nil
}

// IsSyncing reports whether a synchronization pass is running.
func (m *Manager) IsSyncing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncing
}

func (m *Manager) tryBeginSync() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncing {
		return false
	}
	m.syncing = true
	return true
}

func (m *Manager) endSync() {
	m.mu.Lock()
	m.syncing = false
	m.mu.Unlock()
}

// SyncPendingOrders replays every pending order to the server, one at a
// time. A successful delivery marks the order synced; a failed one is
// charged a retry and parked as failed once the ceiling is reached. A
// failure on one order does not stop the pass.
//
// If a pass is already running the call returns immediately with
// AlreadySyncing set and does nothing else. If ctx is cancelled, or the
// server refuses the terminal's credentials, the pass stops and the order in
// flight is not charged a retry. A refused session sets Unauthorized on the
// summary and is returned as the error.
func (m *Manager) SyncPendingOrders(ctx context.Context) (models.SyncSummary, error) {
	if !m.tryBeginSync() {
		return models.SyncSummary{AlreadySyncing: true}, nil
	}
	defer m.endSync()

	summary := models.SyncSummary{StartedAt: m.now()}

	pending, err := m.store.GetPendingOrders(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to read pending orders: %w", err)
	}
	if len(pending) > 0 {
		m.logger.Info(ctx, "sync started", "pending", len(pending))
	}

	var stopErr error
	for _, o := range pending {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}

		serverID, err := m.sender.Send(ctx, o.ID, o.Payload)
		if err != nil && ctx.Err() != nil {
			stopErr = ctx.Err()
			m.logger.Info(ctx, "sync interrupted", "order_id", o.ID)
			break
		}
		if errors.Is(err, client.ErrUnauthorized) {
			stopErr = err
			summary.Unauthorized = true
			m.logger.Warn(ctx, "sync stopped, session refused by server", "order_id", o.ID, "error", err)
			break
		}

		summary.Attempted++
		if err == nil {
			m.recordSuccess(ctx, o, serverID, &summary)
			continue
		}
		m.recordFailure(ctx, o, err, &summary)
	}

	summary.FinishedAt = m.now()
	if summary.Attempted > 0 {
		m.logger.Info(ctx, "sync finished",
			"attempted", summary.Attempted, "synced", summary.Synced, "failed", summary.Failed,
			"duration", summary.Duration())
	}

	m.notify(summary)
	return summary, stopErr
}

func (m *Manager) recordSuccess(ctx context.Context, o *models.QueuedOrder, serverID string, summary *models.SyncSummary) {
	if err := m.store.MarkSynced(ctx, o.ID, serverID, m.now()); err != nil {
		// The server has the order; it stays pending locally and the next
		// delivery carries the same client reference.
		m.logger.Error(ctx, "delivered order could not be marked synced", "order_id", o.ID, "error", err)
		summary.Failed++
		summary.Errors = append(summary.Errors, models.OrderError{ID: o.ID, Err: err})
		return
	}
	summary.Synced++
}

func (m *Manager) recordFailure(ctx context.Context, o *models.QueuedOrder, cause error, summary *models.SyncSummary) {
	summary.Failed++
	summary.Errors = append(summary.Errors, models.OrderError{ID: o.ID, Err: cause})

	updated, err := m.store.RecordFailure(ctx, o.ID, cause.Error(), m.maxRetries)
	if err != nil {
		m.logger.Error(ctx, "failed to record delivery failure", "order_id", o.ID, "error", err)
		return
	}

	if updated.Status == models.OrderStatusFailed {
		m.logger.Error(ctx, "order gave up after max retries",
			"order_id", o.ID, "retries", updated.RetryCount, "error", cause)
		return
	}
	m.logger.Warn(ctx, "order delivery failed, will retry",
		"order_id", o.ID, "retries", updated.RetryCount, "max_retries", m.maxRetries, "error", cause)
}

// Subscribe registers fn to receive the summary of every completed pass.
// The returned function removes the registration.
func (m *Manager) Subscribe(fn func(models.SyncSummary)) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.listeners[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.listeners, id)
			m.subMu.Unlock()
		})
	}
}

func (m *Manager) notify(s models.SyncSummary) {
	m.subMu.Lock()
	fns := make([]func(models.SyncSummary), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (m *Manager) GetPendingCount(ctx context.Context) (int, error) {
	return m.store.CountOrders(ctx, models.OrderStatusPending)
}

func (m *Manager) GetQueueStats(ctx context.Context) (models.QueueStats, error) {
	return m.store.GetStats(ctx)
}

// ClearFailedOrders deletes orders that exhausted their retries and returns
// how many were removed. With an archiver configured the orders are archived
// first, and nothing is deleted if archiving fails.
func (m *Manager) ClearFailedOrders(ctx context.Context) (int, error) {
	failed, err := m.store.GetOrdersByStatus(ctx, models.OrderStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("failed to read failed orders: %w", err)
	}
	if len(failed) == 0 {
		return 0, nil
	}

	if m.archiver != nil {
		if err := m.archiver.Archive(ctx, failed); err != nil {
			return 0, fmt.Errorf("failed to archive failed orders: %w", err)
		}
	}

	ids := make([]string, 0, len(failed))
	for _, o := range failed {
		ids = append(ids, o.ID)
	}

	n, err := m.store.DeleteFailedOrders(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete failed orders: %w", err)
	}

	m.logger.Info(ctx, "failed orders cleared", "count", n, "archived", m.archiver != nil)
	return n, nil
}
