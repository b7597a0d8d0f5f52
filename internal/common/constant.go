// Package common contains shared constants and sentinel errors used across
// the terminal and the intake server.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ClientRefHeaderName carries the locally generated order id so the server
// can recognize a replayed delivery.
const ClientRefHeaderName = "x-client-ref"

// PingStatusOK is the body of a healthy ping response.
const PingStatusOK = "OK"
