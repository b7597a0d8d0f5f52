// Package models defines the records kept in the terminal's local store:
// queued orders with their delivery lifecycle, the cached login session,
// generic cache entries, and the summaries reported by the queue manager.
package models
