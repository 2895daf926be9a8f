package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, blob backends and the
// cache return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: a concurrent writer won a race the caller cannot resolve
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backend temporarily unavailable, retry may succeed
// - ErrCacheMiss: cache has no entry, fall through to the source of truth
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrCacheMiss    = errors.New("cache miss")
)
