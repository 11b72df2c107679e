// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sessionsuc

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/pricing"
)

// Option is a functional option for the sessions use case.
type Option func(uc *UseCase) error

// WithPricing configures the pricing engine. A default engine is
// instantiated if this option is not given.
func WithPricing(e *pricing.Engine) Option {
	return func(uc *UseCase) error {
		if e == nil {
			return errors.New("nil pricing engine")
		}
		if uc.pricing != nil {
			return errors.New("pricing engine is already configured")
		}
		uc.pricing = e
		return nil
	}
}

// WithLocation configures the time zone which the parking opening
// hours and the weekly subscription slots are interpreted in.
// UTC is used by default.
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCase) error {
		if loc == nil {
			return errors.New("nil location")
		}
		uc.loc = loc
		return nil
	}
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("nil clock")
		}
		uc.now = now
		return nil
	}
}

// WithIDGenerator replaces uuid.New for new session identifiers.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(uc *UseCase) error {
		if newID == nil {
			return errors.New("nil id generator")
		}
		uc.newID = newID
		return nil
	}
}
