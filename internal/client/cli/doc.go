// Package cli provides the interactive POS terminal.
//
// It wires configuration, the local order store, the transport client,
// the submission orchestrator and the background workers (connectivity
// watcher and sync scheduler), then runs a REPL. Orders placed while the
// server is unreachable are queued and replayed once it answers again.
//
// The REPL is started via App.Run(ctx), which blocks until the operator
// exits. See runREPL for the command list.
package cli
