// Package client contains the terminal's network collaborators.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts: OrderSubmitter (deliver one order and
//     get the server id back), Pinger, and Client which adds Login and Close.
//  2. GRPCClient, talking to the pos.v1.OrderIntake service. An interceptor
//     injects the access token obtained at login into every call.
//  3. RESTClient, talking to the same server over its JSON API.
//
// # Error Handling
//
// Both implementations map transport failures onto sentinel errors that
// callers match with errors.Is:
//
//   - ErrUnavailable: no answer (connection refused, 502/503/504, gRPC
//     Unavailable or DeadlineExceeded). Safe to retry later.
//   - ErrUnauthorized: credentials or token refused.
//   - ErrRejected: the server answered and refused the request.
//
// IsConnectivityError groups ErrUnavailable with context.DeadlineExceeded.
//
// Concurrency & Contexts
//
// Both clients are safe for concurrent use. All operations accept a
// context.Context and honor its deadline.
package client
