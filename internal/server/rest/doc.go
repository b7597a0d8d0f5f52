// Package rest exposes the intake API over HTTP/JSON for terminals configured
// with the REST transport. Routes mirror the gRPC service one to one.
package rest
