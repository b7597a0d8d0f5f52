// Package scheduler runs queue synchronization in the background: on a
// timer while the terminal is online, right away when connectivity comes
// back, and with exponential backoff after passes that had failures.
package scheduler

import (
	"context"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultInterval   = 30 * time.Second
	DefaultMaxBackoff = 5 * time.Minute
	jitterPercent     = 10
)

// Syncer runs one synchronization pass.
type Syncer interface {
	SyncPendingOrders(ctx context.Context) (models.SyncSummary, error)
}

// Connectivity provides the online flag and transition events.
type Connectivity interface {
	Online() bool
	OnChange(fn func(online bool)) (unsubscribe func())
}

type Scheduler struct {
	syncer     Syncer
	conn       Connectivity
	logger     logging.Logger
	interval   time.Duration
	maxBackoff time.Duration

	newBackoff func() retry.Backoff
	backoff    retry.Backoff
	trigger    chan struct{}
}

func New(syncer Syncer, conn Connectivity, interval, maxBackoff time.Duration, logger logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxBackoff < interval {
		maxBackoff = DefaultMaxBackoff
		if maxBackoff < interval {
			maxBackoff = interval
		}
	}

	s := &Scheduler{
		syncer:     syncer,
		conn:       conn,
		logger:     logger.With("module", "scheduler"),
		interval:   interval,
		maxBackoff: maxBackoff,
		trigger:    make(chan struct{}, 1),
	}
	s.newBackoff = func() retry.Backoff {
		b := retry.NewExponential(s.interval)
		b = retry.WithCappedDuration(s.maxBackoff, b)
		return retry.WithJitterPercent(jitterPercent, b)
	}
	return s
}

// Trigger requests a pass as soon as possible. Requests made while one is
// already waiting are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// nextDelay returns the wait before the next timer pass given the outcome
// of the last one. After a failing pass the wait never drops below the
// interval and doubles up to maxBackoff.
func (s *Scheduler) nextDelay(sum models.SyncSummary, err error) time.Duration {
	if err == nil && sum.Failed == 0 {
		s.backoff = nil
		return s.interval
	}
	if s.backoff == nil {
		s.backoff = s.newBackoff()
	}
	d, stop := s.backoff.Next()
	if stop {
		return s.maxBackoff
	}
	return max(d, s.interval)
}

func (s *Scheduler) runPass(ctx context.Context) time.Duration {
	if !s.conn.Online() {
		return s.interval
	}
	sum, err := s.syncer.SyncPendingOrders(ctx)
	if ctx.Err() != nil {
		return s.interval
	}
	if sum.AlreadySyncing || sum.Unauthorized {
		return s.interval
	}
	if err != nil {
		s.logger.Error(ctx, "background sync failed", "error", err)
	}
	d := s.nextDelay(sum, err)
	if err != nil || sum.Failed > 0 {
		s.logger.Warn(ctx, "sync had failures, backing off", "failed", sum.Failed, "next_in", d)
	}
	return d
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	unsubscribe := s.conn.OnChange(func(online bool) {
		if online {
			s.Trigger()
		}
	})
	defer unsubscribe()

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
		case <-timer.C:
		}

		d := s.runPass(ctx)
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d)
	}
}
