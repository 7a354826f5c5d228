package utils

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// ErrorClass is a coarse classification of backend failures used to decide
// whether an operation is worth retrying.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassNetwork
	ClassPermission
	ClassNotFound
	ClassConflict
	ClassUnavailable
)

// Classify maps an error to its class. Only network and unavailable errors
// are considered transient.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "forbidden"):
		return ClassPermission
	case strings.Contains(msg, "not found") || strings.Contains(msg, "no rows"):
		return ClassNotFound
	case strings.Contains(msg, "conflict") || strings.Contains(msg, "already"):
		return ClassConflict
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset"):
		return ClassUnavailable
	}
	return ClassUnknown
}

func (c ErrorClass) Transient() bool {
	return c == ClassNetwork || c == ClassUnavailable
}

// RetryPolicy retries transient failures with a linearly growing delay:
// base, 2*base, 3*base, up to MaxAttempts total attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// Do runs op, retrying while the returned error classifies as transient.
// The last error is returned when attempts are exhausted or the context is
// cancelled.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * p.BaseDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if !Classify(lastErr).Transient() {
			return lastErr
		}
	}

	return lastErr
}
