// Package retry provides exponential backoff retry logic for bounded
// recovery from transient failures.
//
// The primary consumer is the resolution facade, which retries reads against
// a graph store that has not finished hydrating. The package is deliberately
// small: a Config, a Do function, and a marker for errors that must not be
// retried.
//
// Usage:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return store.Ping()
//	})
//
// Errors wrapped with retry.NonRetryable fail immediately regardless of the
// remaining attempt budget. Context cancellation aborts both the operation
// and any backoff sleep in progress.
package retry
