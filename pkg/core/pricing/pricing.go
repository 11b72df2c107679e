// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pricing converts parking durations and hourly rates into
// billed amounts. Durations are billed in fixed increments (quarters of
// an hour by default) and a partial increment is billed as a full one.
// Overstaying an authorized end time costs the extra increments at the
// same rate plus a flat base penalty.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// Default values of the Engine settings.
const (
	DefaultQuarter          = 15 * time.Minute
	DefaultBasePenaltyCents = 2000
)

// Engine computes prices and penalties. Its zero value is not usable,
// use New for instantiation.
type Engine struct {
	quarter          time.Duration
	basePenaltyCents int64
}

// New instantiates a pricing Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{basePenaltyCents: -1}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if e.quarter == 0 {
		e.quarter = DefaultQuarter
	}
	if e.basePenaltyCents < 0 {
		e.basePenaltyCents = DefaultBasePenaltyCents
	}
	return e, nil
}

// Option is a functional option for the pricing Engine.
type Option func(e *Engine) error

// WithQuarter configures the billing increment. It must be a positive
// whole number of minutes.
func WithQuarter(q time.Duration) Option {
	return func(e *Engine) error {
		switch {
		case q <= 0:
			return fmt.Errorf("quarter (%v) is not positive", q)
		case q%time.Minute != 0:
			return fmt.Errorf("quarter (%v) is not in whole minutes", q)
		case e.quarter != 0:
			return errors.New("quarter is already configured")
		}
		e.quarter = q
		return nil
	}
}

// WithBasePenaltyCents configures the flat overstay penalty.
func WithBasePenaltyCents(cents int64) Option {
	return func(e *Engine) error {
		switch {
		case cents < 0:
			return fmt.Errorf("base penalty (%d) is negative", cents)
		case e.basePenaltyCents >= 0:
			return errors.New("base penalty is already configured")
		}
		e.basePenaltyCents = cents
		return nil
	}
}

// Quarter returns the billing increment.
func (e *Engine) Quarter() time.Duration {
	return e.quarter
}

// Quarters returns the number of billing increments which cover d,
// counting a partial increment as a full one. Non-positive durations
// take zero increments.
func (e *Engine) Quarters(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	q := int64(d / e.quarter)
	if d%e.quarter != 0 {
		q++
	}
	return q
}

// Charge bills n increments with the given hourly rate, rounding the
// result half-up to cents.
func (e *Engine) Charge(hourlyRate model.Money, n int64) (model.Money, error) {
	qm := int64(e.quarter / time.Minute)
	return hourlyRate.MulRat(n*qm, 60)
}

// Price bills the [start, end) stay with the hourly rate. It fails with
// an InvalidArgument error unless start is before end.
func (e *Engine) Price(
	hourlyRate model.Money, start, end time.Time,
) (model.Money, error) {
	if !start.Before(end) {
		return model.Money{}, cerr.InvalidArgument(fmt.Errorf(
			"end (%v) is not after start (%v)", end, start,
		))
	}
	return e.Charge(hourlyRate, e.Quarters(end.Sub(start)))
}

// BasePenalty returns the flat overstay penalty in the currency of the
// given hourly rate.
func (e *Engine) BasePenalty(hourlyRate model.Money) model.Money {
	return model.MustMoney(e.basePenaltyCents, hourlyRate.Currency())
}

// Overstay bills the increments after the authorized end, without the
// base penalty. It returns zero if actualEnd is not after authorizedEnd.
func (e *Engine) Overstay(
	hourlyRate model.Money, authorizedEnd, actualEnd time.Time,
) (model.Money, error) {
	return e.Charge(hourlyRate, e.Quarters(actualEnd.Sub(authorizedEnd)))
}

// Penalty returns the base penalty plus the Overstay charge if
// actualEnd is after authorizedEnd, and zero otherwise.
func (e *Engine) Penalty(
	hourlyRate model.Money, authorizedEnd, actualEnd time.Time,
) (model.Money, error) {
	if !actualEnd.After(authorizedEnd) {
		return model.ZeroMoney(hourlyRate.Currency())
	}
	extra, err := e.Overstay(hourlyRate, authorizedEnd, actualEnd)
	if err != nil {
		return model.Money{}, fmt.Errorf("computing overstay: %w", err)
	}
	return e.BasePenalty(hourlyRate).Add(extra)
}
