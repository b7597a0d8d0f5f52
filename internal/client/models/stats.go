package models

import "time"

// QueueStats is a point-in-time count of orders per status.
// Pending+Synced+Failed always equals Total.
type QueueStats struct {
	Pending int `json:"pending"`
	Synced  int `json:"synced"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// OrderError records why a single order could not be delivered in a pass.
type OrderError struct {
	ID  string
	Err error
}

func (e OrderError) Error() string {
	return e.ID + ": " + e.Err.Error()
}

func (e OrderError) Unwrap() error { return e.Err }

// SyncSummary describes one synchronization pass.
type SyncSummary struct {
	// Attempted is the number of orders sent to the server.
	Attempted int
	Synced    int
	// Failed counts attempts that did not succeed in this pass, whether the
	// order stays pending or was parked as failed.
	Failed int
	Errors []OrderError

	// AlreadySyncing is set when the call found another pass running and
	// did nothing.
	AlreadySyncing bool

	// Unauthorized is set when the server refused the session and the pass
	// stopped without charging the order in flight.
	Unauthorized bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the pass took.
func (s SyncSummary) Duration() time.Duration {
	if s.FinishedAt.Before(s.StartedAt) {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
