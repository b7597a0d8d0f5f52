package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 15 * time.Second

// Dispatcher is the timed network path shared by live submissions and queue
// replays.
type Dispatcher struct {
	c       client.OrderSubmitter
	timeout time.Duration
}

func NewDispatcher(c client.OrderSubmitter, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{c: c, timeout: timeout}
}

// Send delivers payload with the dispatcher's timeout. When the timeout
// fires the error matches both client.ErrUnavailable and
// context.DeadlineExceeded.
func (d *Dispatcher) Send(ctx context.Context, clientRef string, payload json.RawMessage) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := d.c.SubmitOrder(tctx, clientRef, payload)
	if err == nil {
		return id, nil
	}

	if ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) && !client.IsConnectivityError(err) {
		return "", fmt.Errorf("%w: no answer within %s: %w", client.ErrUnavailable, d.timeout, context.DeadlineExceeded)
	}
	return "", err
}
