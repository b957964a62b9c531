package jtbd

import "errors"

// Error kinds surfaced by the engine. Callers match with errors.Is; the
// transport layer maps them onto status codes.
var (
	// ErrNotFound: a referenced Graph, Job or anchor does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidHierarchy: a write would violate a parent/level/graph
	// membership invariant, e.g. a reorder set that omits or duplicates
	// siblings, or a parent from another graph.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrLimitExceeded: the sibling count would exceed the per-level maximum.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrCorruptRecord: a stored row fails its own invariants on read.
	// Fatal for the request; signals a storage-layer bug.
	ErrCorruptRecord = errors.New("corrupt record")
)
