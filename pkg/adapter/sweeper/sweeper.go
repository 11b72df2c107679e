// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sweeper runs the periodic background job which completes
// the elapsed reservations (whose users never checked in) and releases
// their parking spaces.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/core/log"
)

// DefaultTimeout bounds each sweep attempt.
const DefaultTimeout = 30 * time.Second

// SweepFunc sweeps the elapsed reservations once and returns the
// number of completed ones.
type SweepFunc func(ctx context.Context) (int, error)

// Sweeper calls a SweepFunc periodically.
type Sweeper struct {
	sweep    SweepFunc
	interval time.Duration
	timeout  time.Duration
	m        *metrics.Metrics
}

// New creates a Sweeper which calls sweep every interval. The m
// metrics may be nil.
func New(
	sweep SweepFunc, interval time.Duration, m *metrics.Metrics,
) (*Sweeper, error) {
	if sweep == nil {
		return nil, errors.New("sweep function is missing")
	}
	if interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	return &Sweeper{
		sweep:    sweep,
		interval: interval,
		timeout:  min(DefaultTimeout, interval),
		m:        m,
	}, nil
}

// Run sweeps every interval until ctx is cancelled. Failed sweeps are
// logged and retried in the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Once(ctx)
		}
	}
}

// Once runs a single sweep attempt and returns its completed
// reservations count.
func (s *Sweeper) Once(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.sweep(ctx)
	if err != nil {
		log.Error(ctx, "sweeping elapsed reservations", log.Err("err", err))
		return 0
	}
	if n > 0 {
		s.m.Add(metrics.EventReservationSwept, n)
		log.Info(
			ctx, "elapsed reservations are completed",
			slog.Int("count", n),
		)
	}
	return n
}
