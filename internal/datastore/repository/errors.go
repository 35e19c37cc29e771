package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/labelquorum/quorum/internal/errors"
)

// notFoundError is a comparable sentinel that reports CategoryNotFound.
type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func (notFoundError) ErrorCategory() errors.ErrorCategory { return errors.CategoryNotFound }

// Sentinel errors for repository operations.
var (
	ErrProjectNotFound     error = notFoundError("project not found")
	ErrMemberNotFound      error = notFoundError("member not found")
	ErrLabelNotFound       error = notFoundError("label not found")
	ErrRoundNotFound       error = notFoundError("voting round not found")
	ErrRuleNotFound        error = notFoundError("annotation rule not found")
	ErrReviewNotFound      error = notFoundError("dataset review not found")
	ErrDiscrepancyNotFound error = notFoundError("manual discrepancy not found")

	// ErrDuplicateKey indicates a unique constraint violation. The driver
	// error is wrapped alongside it so callers can tell indexes apart.
	ErrDuplicateKey = errors.NewStd("duplicate key")

	// ErrStorageUnavailable indicates the durable store could not complete
	// the operation. It is the only repository error worth retrying.
	ErrStorageUnavailable = errors.NewStd("storage temporarily unavailable")
)

// Unavailable wraps a driver failure into ErrStorageUnavailable.
func Unavailable(op string, err error) error {
	return errors.New(fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", op).
		Build()
}

// exhausted reports a transaction that kept hitting lock conflicts until the
// retry budget ran out. It carries the attempt count and elapsed time.
func exhausted(op string, err error, attempts int, elapsed time.Duration) error {
	return errors.Newf("%w: %s: %w", ErrStorageUnavailable, op, err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Priority(errors.PriorityHigh).
		Timing(op, elapsed).
		Context("attempts", attempts).
		Build()
}

// Wrap passes categorized errors (domain errors, not-found sentinels,
// already wrapped storage errors), duplicate keys and context cancellation through
// unchanged and turns anything else into ErrStorageUnavailable.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrDuplicateKey) {
		return err
	}
	var categorized errors.CategorizedError
	if errors.As(err, &categorized) {
		return err
	}
	return Unavailable(op, err)
}

// Retryable reports whether the caller should retry the operation later.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
