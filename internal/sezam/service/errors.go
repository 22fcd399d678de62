package service

import "errors"

var (
	// ErrSecretMismatch marks a callback whose shared secret did not match.
	// The ingress boundary swallows it: the transport still gets "ok".
	ErrSecretMismatch = errors.New("callback secret mismatch")

	// ErrUnroutedRequest marks an envelope type with no handler.
	ErrUnroutedRequest = errors.New("request type not routed")

	// ErrLockTimeout means the ledger could not take its write lock within
	// the bounded wait. The caller cannot guarantee idempotency and must
	// abort processing for the request.
	ErrLockTimeout = errors.New("write lock wait timed out")

	ErrInvalidEventID = errors.New("event id is required")
)
