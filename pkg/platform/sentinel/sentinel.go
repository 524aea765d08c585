// Package sentinel holds infrastructure sentinel errors. Stub-server stores
// return these (optionally wrapped) so handlers can translate them into the
// coded wire errors clients understand.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrExpired: token/challenge/code has expired
// - ErrAlreadyUsed: one-shot resource (recovery code, idempotency key) consumed
// - ErrInvalidState: entity in wrong state for the requested operation
// - ErrUnavailable: resource temporarily unavailable
package sentinel

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
