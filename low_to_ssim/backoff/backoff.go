// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package backoff

import (
	"context"
	"time"
)

const (
	Success = true
	Failure = false
)

// Backoff computes the delay before the next attempt of an operation, doubling
// it with every consecutive failure (up to MaxBackoffExponent doublings).
type Backoff struct {
	Period             time.Duration
	Failures           uint
	MaxBackoffExponent uint

	lastRun time.Time
	nextRun time.Time
}

func (b *Backoff) StartRun() {
	b.lastRun = time.Now()
}

func (b *Backoff) EndRun(success bool) time.Time {
	if success {
		b.Failures = 0
		b.nextRun = b.lastRun
	} else {
		b.Failures++
		backoffExponent := b.Failures - 1
		if b.MaxBackoffExponent > 0 && backoffExponent > b.MaxBackoffExponent {
			backoffExponent = b.MaxBackoffExponent
		}
		sleep := b.Period * time.Duration(pow(2, backoffExponent))
		b.nextRun = b.lastRun.Add(sleep)
	}
	return b.nextRun
}

// Wait blocks until the next attempt is due, or until the context is cancelled.
func (b *Backoff) Wait(ctx context.Context) error {
	duration := time.Until(b.nextRun)
	if duration <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(duration):
		return nil
	}
}

// Retry calls fn up to attempts times, as long as it fails with an error for
// which retryable returns true. The last error is returned.
func Retry(ctx context.Context, b *Backoff, attempts int, retryable func(error) bool, fn func(context.Context) error) (err error) {
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := b.Wait(ctx); err != nil {
			return err
		}

		b.StartRun()
		err = fn(ctx)
		if err == nil {
			b.EndRun(Success)
			return nil
		} else if !retryable(err) {
			return err
		}
		b.EndRun(Failure)
	}
	return err
}

func pow(base, exp uint) uint {
	r := uint(1)
	for exp > 0 {
		if exp&1 == 1 {
			r *= base
		}
		base *= base
		exp >>= 1
	}
	return r
}
