package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ClassUnknown},
		{"permission", errors.New("permission denied"), ClassPermission},
		{"forbidden", errors.New("403 Forbidden"), ClassPermission},
		{"not found", errors.New("record not found"), ClassNotFound},
		{"no rows", errors.New("sql: no rows in result set"), ClassNotFound},
		{"conflict", errors.New("write conflict"), ClassConflict},
		{"already", errors.New("ticket already assigned"), ClassConflict},
		{"unavailable", errors.New("service unavailable"), ClassUnavailable},
		{"timeout", errors.New("i/o timeout"), ClassUnavailable},
		{"refused", errors.New("dial tcp: connection refused"), ClassUnavailable},
		{"unknown", errors.New("something odd"), ClassUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.err))
		})
	}
}

func TestErrorClass_Transient(t *testing.T) {
	assert.True(t, ClassNetwork.Transient())
	assert.True(t, ClassUnavailable.Transient())
	assert.False(t, ClassPermission.Transient())
	assert.False(t, ClassNotFound.Transient())
	assert.False(t, ClassConflict.Transient())
	assert.False(t, ClassUnknown.Transient())
}

func TestRetryPolicy_RetriesTransient(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_StopsOnPermanent(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return errors.New("permission denied")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return errors.New("i/o timeout")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_HonorsContextCancel(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := policy.Do(ctx, func() error {
		attempts++
		return errors.New("i/o timeout")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	ctx := context.Background()

	failing := errors.New("i/o timeout")
	for i := 0; i < 20; i++ {
		err := cb.Execute(ctx, func() error { return failing })
		require.ErrorIs(t, err, failing)
	}

	err := cb.Execute(ctx, func() error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	called := false
	err := cb.Execute(context.Background(), func() error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestGenerateTicketNo(t *testing.T) {
	first, err := GenerateTicketNo()
	require.NoError(t, err)

	second, err := GenerateTicketNo()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "TKT"))
	assert.Equal(t, strings.ToUpper(first), first)
	assert.NotEqual(t, first, second)
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(3)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}
