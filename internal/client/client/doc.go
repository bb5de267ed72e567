// Package client talks to the keycustody server.
//
// Client is the transport-agnostic contract used by the CLI services;
// GRPCClient implements it over the KeyCustodyService. GRPCClient keeps the
// token pair returned by Login, attaches the access token to every call
// through a unary interceptor and, when the server answers
// Unauthenticated "token expired", rotates the pair with RefreshToken and
// retries once.
//
// Transport failures are folded into a few sentinels (ErrUnavailable,
// ErrUnauthorized, ErrForbidden, ErrNotFound, ErrRejected) that callers match with
// errors.Is. Register additionally reports common.ErrUsernameExists and
// common.ErrMissingCredentials from the server's status enum.
package client
