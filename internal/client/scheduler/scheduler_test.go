package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	calls atomic.Int32
	sum   models.SyncSummary
	err   error
}

func (f *fakeSyncer) SyncPendingOrders(context.Context) (models.SyncSummary, error) {
	f.calls.Add(1)
	return f.sum, f.err
}

type fakeConn struct {
	online    atomic.Bool
	mu        sync.Mutex
	listeners []func(bool)
}

func (c *fakeConn) Online() bool { return c.online.Load() }

func (c *fakeConn) OnChange(fn func(bool)) func() {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
	return func() {}
}

func (c *fakeConn) set(v bool) {
	c.online.Store(v)
	c.mu.Lock()
	fns := append([]func(bool){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func TestNextDelay_BacksOffAndResets(t *testing.T) {
	s := New(&fakeSyncer{}, &fakeConn{}, 30*time.Second, 5*time.Minute, logging.Discard())

	failed := models.SyncSummary{Failed: 1}
	first := s.nextDelay(failed, nil)
	assert.GreaterOrEqual(t, first, 30*time.Second, "failing passes never retry sooner than the interval")

	second := s.nextDelay(failed, nil)
	assert.GreaterOrEqual(t, second, 54*time.Second, "doubles, minus jitter")
	assert.GreaterOrEqual(t, first+second, 84*time.Second,
		"three attempts take at least as long as at the clean interval")

	for i := 0; i < 12; i++ {
		d := s.nextDelay(failed, nil)
		assert.GreaterOrEqual(t, d, 30*time.Second)
		assert.LessOrEqual(t, d, 5*time.Minute+30*time.Second, "capped, plus jitter")
	}

	assert.Equal(t, 30*time.Second, s.nextDelay(models.SyncSummary{Synced: 2}, nil))
	assert.Nil(t, s.backoff)

	d := s.nextDelay(models.SyncSummary{}, errors.New("store down"))
	assert.GreaterOrEqual(t, d, 30*time.Second)
	assert.Less(t, d, 54*time.Second, "backoff starts again from the interval")
}

func TestRunPass_RefusedSessionKeepsInterval(t *testing.T) {
	syncer := &fakeSyncer{sum: models.SyncSummary{Unauthorized: true}, err: errors.New("unauthorized")}
	conn := &fakeConn{}
	conn.online.Store(true)
	s := New(syncer, conn, time.Second, time.Minute, logging.Discard())

	assert.Equal(t, time.Second, s.runPass(context.Background()))
	assert.Equal(t, int32(1), syncer.calls.Load())
	assert.Nil(t, s.backoff)
}

func TestNew_Defaults(t *testing.T) {
	s := New(&fakeSyncer{}, &fakeConn{}, 0, 0, logging.Discard())
	assert.Equal(t, DefaultInterval, s.interval)
	assert.Equal(t, DefaultMaxBackoff, s.maxBackoff)
}

func TestRunPass_SkipsWhenOffline(t *testing.T) {
	syncer := &fakeSyncer{}
	s := New(syncer, &fakeConn{}, time.Second, time.Minute, logging.Discard())

	assert.Equal(t, time.Second, s.runPass(context.Background()))
	assert.Zero(t, syncer.calls.Load())
}

func TestRun_TriggersOnReconnectAndTimer(t *testing.T) {
	syncer := &fakeSyncer{}
	conn := &fakeConn{}
	s := New(syncer, conn, 20*time.Millisecond, time.Second, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, syncer.calls.Load(), "offline: no passes")

	conn.set(true)
	require.Eventually(t, func() bool { return syncer.calls.Load() >= 2 }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestTrigger_Coalesces(t *testing.T) {
	s := New(&fakeSyncer{}, &fakeConn{}, time.Second, time.Minute, logging.Discard())
	s.Trigger()
	s.Trigger()
	assert.Len(t, s.trigger, 1)
}
