package graph

import "errors"

// Sentinel errors for resolution operations. These are wrapped with
// behavioral classification (Transient/Fatal/Invalid) when returned from
// components.

// Entity errors
var (
	// ErrEntityNotFound indicates the requested entity does not exist
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidEntityID indicates the entity ID format is invalid
	ErrInvalidEntityID = errors.New("invalid entity ID")
)

// Graph integrity errors
var (
	// ErrInconsistentGraph indicates a structural contradiction discovered
	// during assembly, such as a column whose owning-table reference has no
	// matching HAS_COLUMN edge. Never silently patched.
	ErrInconsistentGraph = errors.New("inconsistent graph")

	// ErrDanglingEdge indicates an edge referencing an entity absent from
	// the snapshot. A data-quality condition, not a crash condition.
	ErrDanglingEdge = errors.New("dangling edge")
)

// Query errors
var (
	// ErrQueryTimeout indicates query execution exceeded its time budget
	ErrQueryTimeout = errors.New("query timeout")

	// ErrQueryDepthExceeded indicates traversal depth limit exceeded
	ErrQueryDepthExceeded = errors.New("query depth exceeded")

	// ErrInvalidQueryParams indicates query parameters are invalid
	ErrInvalidQueryParams = errors.New("invalid query parameters")
)

// Store errors
var (
	// ErrStoreUnavailable indicates the graph store is unreachable or has
	// not yet been hydrated with a snapshot
	ErrStoreUnavailable = errors.New("store unavailable")
)
