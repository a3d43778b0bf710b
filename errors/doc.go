// Package errors provides standardized error handling for the resolution
// service. It includes behavioral classification (transient, invalid,
// fatal), standard error variables for common conditions, and helpers for
// consistent wrapping with component and operation context.
//
// Components wrap failures with one of the classification helpers:
//
//	return errors.WrapInvalid(err, "SchemaAssembler", "TableSchema",
//	    "column resolution failed")
//
// The resolution facade uses the classification to decide whether a failure
// may be retried (store unavailable during hydration) or must be surfaced
// immediately (validation failures, graph inconsistency).
package errors
