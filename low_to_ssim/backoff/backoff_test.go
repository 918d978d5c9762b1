// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")
var errPermanent = errors.New("permanent")

func isTemporary(err error) bool { return errors.Is(err, errTemporary) }

func TestEndRunDoublesDelay(t *testing.T) {
	b := Backoff{Period: time.Second, MaxBackoffExponent: 2}
	b.StartRun()
	start := b.lastRun

	assert.Equal(t, start.Add(1*time.Second), b.EndRun(Failure))
	assert.Equal(t, start.Add(2*time.Second), b.EndRun(Failure))
	assert.Equal(t, start.Add(4*time.Second), b.EndRun(Failure))
	assert.Equal(t, start.Add(4*time.Second), b.EndRun(Failure))
	assert.Equal(t, uint(4), b.Failures)

	assert.Equal(t, start, b.EndRun(Success))
	assert.Equal(t, uint(0), b.Failures)
}

func TestRetrySucceedsAfterTemporaryFailures(t *testing.T) {
	b := &Backoff{Period: time.Millisecond}
	calls := 0
	err := Retry(context.Background(), b, 5, isTemporary, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTemporary
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	b := &Backoff{Period: time.Millisecond}
	calls := 0
	err := Retry(context.Background(), b, 5, isTemporary, func(context.Context) error {
		calls++
		return errPermanent
	})
	assert.ErrorIs(t, err, errPermanent)
	assert.Equal(t, 1, calls)
}

func TestRetryGivesUp(t *testing.T) {
	b := &Backoff{Period: time.Millisecond}
	calls := 0
	err := Retry(context.Background(), b, 3, isTemporary, func(context.Context) error {
		calls++
		return errTemporary
	})
	assert.ErrorIs(t, err, errTemporary)
	assert.Equal(t, 3, calls)
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Backoff{Period: time.Hour}
	err := Retry(ctx, b, 3, isTemporary, func(context.Context) error {
		t.Fatal("should not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
