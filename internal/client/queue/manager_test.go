package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/client/store"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

/*************
 * fakes
 *************/

type fakeSender struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, ref string) (string, error)
}

func (f *fakeSender) Send(ctx context.Context, ref string, _ json.RawMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref)
	fn := f.fn
	f.mu.Unlock()
	return fn(ctx, ref)
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func succeed(_ context.Context, ref string) (string, error) { return "srv-" + ref, nil }

func unavailable(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: connection refused", client.ErrUnavailable)
}

type fakeArchiver struct {
	got []*models.QueuedOrder
	err error
}

func (a *fakeArchiver) Archive(_ context.Context, orders []*models.QueuedOrder) error {
	a.got = append(a.got, orders...)
	return a.err
}

/*************
 * helpers
 *************/

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newManager(t *testing.T, sender *fakeSender, opts ...Option) (*Manager, *store.Store) {
	t.Helper()
	st := newStore(t)
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	return NewManager(st, sender, logging.Discard(), opts...), st
}

func queue(t *testing.T, m *Manager, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := m.QueueOrder(context.Background(), json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

/*************
 * QueueOrder
 *************/

func TestQueueOrder_PersistsPendingRecord(t *testing.T) {
	m, st := newManager(t, &fakeSender{fn: succeed})
	ctx := context.Background()

	id, err := m.QueueOrder(ctx, json.RawMessage(`{"table":12,"items":["soup"]}`))
	require.NoError(t, err)

	o, err := st.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Zero(t, o.RetryCount)
	assert.Equal(t, clock.UnixMilli(), o.EnqueuedAt)
	assert.Nil(t, o.SyncedAt)
	assert.JSONEq(t, `{"table":12,"items":["soup"]}`, string(o.Payload))

	n, err := m.GetPendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestQueueOrder_RejectsEmptyPayload(t *testing.T) {
	m, _ := newManager(t, &fakeSender{fn: succeed})
	ctx := context.Background()

	for _, p := range []json.RawMessage{nil, json.RawMessage(""), json.RawMessage("  \n")} {
		_, err := m.QueueOrder(ctx, p)
		require.ErrorIs(t, err, common.ErrValidation)
	}

	stats, err := m.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestQueueOrder_StoreErrorPropagates(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "never-initialized.db"))
	m := NewManager(st, &fakeSender{fn: succeed}, logging.Discard())

	_, err := m.QueueOrder(context.Background(), json.RawMessage(`{}`))
	require.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestQueueOrder_IDGeneratorError(t *testing.T) {
	m, _ := newManager(t, &fakeSender{fn: succeed},
		WithIDGenerator(func() (string, error) { return "", errors.New("entropy") }))

	_, err := m.QueueOrder(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestQueueOrder_DistinctTimeOrderedIDs(t *testing.T) {
	m := NewManager(newStore(t), &fakeSender{fn: succeed}, logging.Discard())

	ids := queue(t, m, 200)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}

		u, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), u.Version())
	}
}

/*************
 * SyncPendingOrders
 *************/

func TestSync_OfflineOrdersDeliveredWhenBackOnline(t *testing.T) {
	sender := &fakeSender{fn: succeed}
	m, st := newManager(t, sender)
	ctx := context.Background()
	ids := queue(t, m, 3)

	sum, err := m.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Attempted)
	assert.Equal(t, 3, sum.Synced)
	assert.Zero(t, sum.Failed)
	assert.Empty(t, sum.Errors)
	assert.ElementsMatch(t, ids, sender.calls, "queued id is forwarded as client reference")

	stats, err := m.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStats{Synced: 3, Total: 3}, stats)

	for _, id := range ids {
		o, err := st.GetOrder(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, o.SyncedAt)
		assert.Equal(t, clock.UnixMilli(), *o.SyncedAt)
		assert.Equal(t, "srv-"+id, o.ServerID)
	}
}

func TestSync_RetryCeiling(t *testing.T) {
	sender := &fakeSender{fn: unavailable}
	m, st := newManager(t, sender)
	ctx := context.Background()
	id := queue(t, m, 1)[0]

	for pass := 1; pass <= 3; pass++ {
		sum, err := m.SyncPendingOrders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Attempted)
		assert.Equal(t, 1, sum.Failed)
		require.Len(t, sum.Errors, 1)
		assert.ErrorIs(t, sum.Errors[0].Err, client.ErrUnavailable)

		o, err := st.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, pass, o.RetryCount)
		if pass < 3 {
			assert.Equal(t, models.OrderStatusPending, o.Status)
		} else {
			assert.Equal(t, models.OrderStatusFailed, o.Status)
			assert.Contains(t, o.LastError, "connection refused")
		}
	}

	sum, err := m.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Attempted)
	assert.Equal(t, 3, sender.callCount(), "failed orders are not retried")

	stats, err := m.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStats{Failed: 1, Total: 1}, stats)
}

func TestSync_CustomMaxRetries(t *testing.T) {
	m, st := newManager(t, &fakeSender{fn: unavailable}, WithMaxRetries(1))
	id := queue(t, m, 1)[0]

	_, err := m.SyncPendingOrders(context.Background())
	require.NoError(t, err)

	o, err := st.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, o.Status)
}

func TestSync_PartialFailureDoesNotAbortPass(t *testing.T) {
	var failID string
	sender := &fakeSender{}
	m, st := newManager(t, sender)
	ctx := context.Background()

	ids := queue(t, m, 3)
	failID = ids[1]
	sender.fn = func(ctx context.Context, ref string) (string, error) {
		if ref == failID {
			return "", fmt.Errorf("%w: payload must be a JSON object", client.ErrRejected)
		}
		return succeed(ctx, ref)
	}

	sum, err := m.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Attempted)
	assert.Equal(t, 2, sum.Synced)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, failID, sum.Errors[0].ID)

	o, err := st.GetOrder(ctx, failID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.Equal(t, 1, o.RetryCount)

	stats, err := m.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStats{Pending: 1, Synced: 2, Total: 3}, stats)
}

func TestSync_SingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	sender := &fakeSender{fn: func(ctx context.Context, ref string) (string, error) {
		once.Do(func() { close(entered) })
		<-release
		return succeed(ctx, ref)
	}}
	m, _ := newManager(t, sender)
	ctx := context.Background()
	queue(t, m, 2)

	type result struct {
		sum models.SyncSummary
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := m.SyncPendingOrders(ctx)
		done <- result{sum, err}
	}()

	<-entered
	assert.True(t, m.IsSyncing())

	sum, err := m.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.True(t, sum.AlreadySyncing)
	assert.Zero(t, sum.Attempted)

	close(release)
	first := <-done
	require.NoError(t, first.err)
	assert.False(t, first.sum.AlreadySyncing)
	assert.Equal(t, 2, first.sum.Synced)
	assert.Equal(t, 2, sender.callCount(), "each order sent exactly once")
	assert.False(t, m.IsSyncing())
}

func TestSync_CancelledContextDoesNotChargeRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &fakeSender{fn: func(ctx context.Context, ref string) (string, error) {
		cancel()
		return "", ctx.Err()
	}}
	m, st := newManager(t, sender)
	ids := queue(t, m, 2)

	sum, err := m.SyncPendingOrders(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Attempted)
	assert.Equal(t, 1, sender.callCount())

	for _, id := range ids {
		o, err := st.GetOrder(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.Zero(t, o.RetryCount)
	}
	assert.False(t, m.IsSyncing())
}

func TestSync_RefusedSessionDoesNotChargeRetry(t *testing.T) {
	sender := &fakeSender{fn: func(context.Context, string) (string, error) {
		return "", fmt.Errorf("%w: token expired", client.ErrUnauthorized)
	}}
	m, st := newManager(t, sender)
	ids := queue(t, m, 2)

	var notified []models.SyncSummary
	m.Subscribe(func(s models.SyncSummary) { notified = append(notified, s) })

	for pass := 0; pass < 3; pass++ {
		sum, err := m.SyncPendingOrders(context.Background())
		require.ErrorIs(t, err, client.ErrUnauthorized)
		assert.True(t, sum.Unauthorized)
		assert.Zero(t, sum.Attempted)
		assert.Zero(t, sum.Failed)
	}
	assert.Equal(t, 3, sender.callCount(), "one call per pass, then the pass stops")
	require.Len(t, notified, 3)

	for _, id := range ids {
		o, err := st.GetOrder(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.Zero(t, o.RetryCount)
	}

	stats, err := m.GetQueueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.QueueStats{Pending: 2, Total: 2}, stats)

	sender.fn = succeed
	sum, err := m.SyncPendingOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Synced, "a fresh login delivers the same orders")
}

func TestSync_StoreUnavailable(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "x.db"))
	m := NewManager(st, &fakeSender{fn: succeed}, logging.Discard())

	_, err := m.SyncPendingOrders(context.Background())
	require.ErrorIs(t, err, common.ErrNotInitialized)
	assert.False(t, m.IsSyncing())
}

func TestSubscribe_ReceivesSummaryUntilUnsubscribed(t *testing.T) {
	m, _ := newManager(t, &fakeSender{fn: succeed})
	ctx := context.Background()
	queue(t, m, 1)

	var got []models.SyncSummary
	unsubscribe := m.Subscribe(func(s models.SyncSummary) { got = append(got, s) })

	sum, err := m.SyncPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sum, got[0])

	unsubscribe()
	unsubscribe()

	_, err = m.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

/*************
 * ClearFailedOrders
 *************/

func failAll(t *testing.T, m *Manager) {
	t.Helper()
	for i := 0; i < models.DefaultMaxRetries; i++ {
		_, err := m.SyncPendingOrders(context.Background())
		require.NoError(t, err)
	}
}

func TestClearFailedOrders_RemovesOnlyFailed(t *testing.T) {
	sender := &fakeSender{fn: unavailable}
	m, _ := newManager(t, sender)
	ctx := context.Background()

	queue(t, m, 2)
	failAll(t, m)
	sender.fn = succeed
	queue(t, m, 1)

	n, err := m.ClearFailedOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := m.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStats{Pending: 1, Total: 1}, stats)

	n, err = m.ClearFailedOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearFailedOrders_ArchivesFirst(t *testing.T) {
	arch := &fakeArchiver{}
	m, _ := newManager(t, &fakeSender{fn: unavailable}, WithArchiver(arch))
	ctx := context.Background()

	ids := queue(t, m, 2)
	failAll(t, m)

	n, err := m.ClearFailedOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, arch.got, 2)
	got := []string{arch.got[0].ID, arch.got[1].ID}
	assert.ElementsMatch(t, ids, got)
	assert.Equal(t, models.OrderStatusFailed, arch.got[0].Status)
}

func TestClearFailedOrders_ArchiveFailureKeepsOrders(t *testing.T) {
	arch := &fakeArchiver{err: errors.New("bucket missing")}
	m, _ := newManager(t, &fakeSender{fn: unavailable}, WithArchiver(arch))
	ctx := context.Background()

	queue(t, m, 1)
	failAll(t, m)

	_, err := m.ClearFailedOrders(ctx)
	require.Error(t, err)

	stats, err := m.GetQueueStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
}

func TestQueueOrderWithID(t *testing.T) {
	m, st := newManager(t, &fakeSender{fn: succeed})
	ctx := context.Background()

	id, err := m.QueueOrderWithID(ctx, "0190a000-0000-7000-8000-000000000001", json.RawMessage(`{}`))
	require.NoError(t, err)
	_, err = st.GetOrder(ctx, id)
	require.NoError(t, err)

	_, err = m.QueueOrderWithID(ctx, id, json.RawMessage(`{}`))
	require.ErrorIs(t, err, common.ErrDuplicateKey)

	_, err = m.QueueOrderWithID(ctx, "", json.RawMessage(`{}`))
	require.ErrorIs(t, err, common.ErrValidation)
}
