// Package submit decides what happens to an order the moment it is placed:
// deliver it now, keep it for later, or report a refusal.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/logging"
	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeQueued    Outcome = "queued"
	OutcomeRejected  Outcome = "rejected"
)

// Result is what the operator sees after placing an order.
type Result struct {
	Outcome Outcome
	// Success is true when the order is safe: delivered or stored locally.
	Success bool
	// OrderID is the server id when delivered and the local id when queued.
	OrderID   string
	IsOffline bool
	// Err is the refusal reason of a rejected order.
	Err error
}

func (r *Result) Message() string {
	switch r.Outcome {
	case OutcomeDelivered:
		return "Order placed"
	case OutcomeQueued:
		return "Saved offline, will sync"
	default:
		if r.Err != nil {
			return "Order failed: " + r.Err.Error()
		}
		return "Order failed"
	}
}

type Sender interface {
	Send(ctx context.Context, clientRef string, payload json.RawMessage) (string, error)
}

type Queuer interface {
	QueueOrderWithID(ctx context.Context, id string, payload json.RawMessage) (string, error)
}

// Connectivity is the terminal's current belief about the network.
type Connectivity interface {
	Online() bool
}

type Option func(*Orchestrator)

func WithIDGenerator(f func() (string, error)) Option {
	return func(o *Orchestrator) { o.newID = f }
}

type Orchestrator struct {
	sender Sender
	queue  Queuer
	conn   Connectivity
	logger logging.Logger
	newID  func() (string, error)
}

func NewOrchestrator(sender Sender, queue Queuer, conn Connectivity, logger logging.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sender: sender,
		queue:  queue,
		conn:   conn,
		logger: logger.With("module", "submit"),
		newID: func() (string, error) {
			id, err := uuid.NewV7()
			return id.String(), err
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit places an order. While offline it is queued without a network
// attempt. While online it is sent once; if the attempt gets no answer (or
// connectivity drops meanwhile) the order is queued, and if the server
// refuses it the refusal is returned in the Result and nothing is queued.
//
// The returned error is non-nil only when the order could not be queued.
func (o *Orchestrator) Submit(ctx context.Context, payload json.RawMessage) (*Result, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("empty order payload: %w", common.ErrValidation)
	}

	ref, err := o.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order id: %w", err)
	}

	if !o.conn.Online() {
		o.logger.Info(ctx, "offline, queueing order", "order_id", ref)
		return o.enqueue(ctx, ref, payload)
	}

	serverID, err := o.sender.Send(ctx, ref, payload)
	if err == nil {
		o.logger.Info(ctx, "order delivered", "order_id", ref, "server_id", serverID)
		return &Result{Outcome: OutcomeDelivered, Success: true, OrderID: serverID}, nil
	}

	if !o.conn.Online() || client.IsConnectivityError(err) || errors.Is(err, context.Canceled) {
		o.logger.Warn(ctx, "delivery outcome unknown, queueing order", "order_id", ref, "error", err)
		return o.enqueue(context.WithoutCancel(ctx), ref, payload)
	}

	o.logger.Warn(ctx, "order rejected", "order_id", ref, "error", err)
	return &Result{Outcome: OutcomeRejected, Err: err}, nil
}

func (o *Orchestrator) enqueue(ctx context.Context, ref string, payload json.RawMessage) (*Result, error) {
	id, err := o.queue.QueueOrderWithID(ctx, ref, payload)
	if err != nil {
		o.logger.Error(ctx, "failed to queue order", "order_id", ref, "error", err)
		return nil, err
	}
	return &Result{Outcome: OutcomeQueued, Success: true, OrderID: id, IsOffline: true}, nil
}
