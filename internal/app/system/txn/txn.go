// internal/app/system/txn/txn.go
//
// Helpers for classifying MongoDB errors and retrying the small number of
// compare-and-set operations that are allowed a transparent retry
// (theme reserve/release, group code allocation). Business-rule failures
// are never retried here; only infrastructure-level transients are.
package txn

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// MaxAttempts bounds transparent retries for conditional updates.
const MaxAttempts = 3

// retryBackoff is the pause between attempts.
const retryBackoff = 50 * time.Millisecond

// ErrExhausted is returned when a retried operation kept failing with
// transient errors. Callers surface it to the user as a generic
// "try again" condition.
var ErrExhausted = errors.New("operation failed after retries; please try again")

// IsTransient reports whether err looks like a temporary infrastructure
// failure worth retrying: network blips, primary stepdowns, write
// conflicts. Duplicate-key and other definite outcomes are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 112 WriteConflict, 189 PrimarySteppedDown, 91 ShutdownInProgress
		if ce.Code == 112 || ce.Code == 189 || ce.Code == 91 {
			return true
		}
		if ce.HasErrorLabel("TransientTransactionError") || ce.HasErrorLabel("RetryableWriteError") {
			return true
		}
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 112 {
				return true
			}
		}
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection reset") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "no reachable servers") ||
		strings.Contains(s, "server selection timeout")
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions (standalone mongod, old DocDB). Callers fall
// back to single-document conditional updates, which is the primary path
// anyway.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 20 IllegalOperation, 51 ..., 263 OperationNotSupportedInTransaction
		if ce.Code == 20 || ce.Code == 51 || ce.Code == 263 {
			return true
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") && strings.Contains(s, "replica set") {
		return true
	}
	if strings.Contains(s, "session") && (strings.Contains(s, "not supported") || strings.Contains(s, "transaction")) {
		return true
	}
	return strings.Contains(s, "illegal operation") && strings.Contains(s, "transaction")
}

// WithRetry runs fn up to MaxAttempts times, retrying only transient
// failures. Non-transient errors return immediately. When every attempt
// failed transiently, ErrExhausted is returned wrapping the last error.
func WithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		last = err
		if attempt < MaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return errors.Join(ErrExhausted, last)
}
