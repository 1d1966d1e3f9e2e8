// Package client contains the console's connection to the LogiTrack server
// and its local cache bootstrap.
//
// # Overview
//
//  1. Client is the transport-agnostic contract used by the console services.
//  2. GRPCClient implements it on top of internal/api. It injects the access
//     token via interceptors, transparently refreshes expired tokens, and maps
//     gRPC status codes to sentinel errors.
//  3. InitDatabase and RunMigrations open the SQLite cache and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden,
// ErrLocalDataNotAvailable. Validation and conflict errors carry the
// server's message as is.
package client
