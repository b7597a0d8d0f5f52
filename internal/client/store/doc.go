// Package store is the terminal's durable local store.
//
// A Store owns one SQLite database file holding queued orders, cached login
// sessions and a generic key/value cache. It must be initialized before use;
// every operation on a store that was never initialized, or was closed,
// returns common.ErrNotInitialized. Failure to open or migrate the database
// is reported as common.ErrStoreUnavailable.
//
// The pool is limited to a single connection, so writes are serialized by
// the engine and read-modify-write sequences run inside one transaction.
package store
