// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // IANA names are loaded on hosts without zoneinfo

	"github.com/momeni/clean-parking/pkg/adapter/config/settings"
	"github.com/momeni/clean-parking/pkg/core/log"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/pricing"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/availuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/parkingsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/sessionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/subscriptionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/usersuc"
)

// Default values of the immutable use cases settings.
const (
	DefaultCurrency = "EUR"
	DefaultLocation = "UTC"
)

// Usecases contains the configuration settings for all use cases.
type Usecases struct {
	Pricing      Pricing      // billing granularity and penalty
	Reservations Reservations // reservation duration bounds

	// Currency is the ISO code which new parkings are priced with.
	Currency string `yaml:"currency,omitempty"`

	// Location is the IANA time zone name which opening hours and
	// weekly subscription slots are interpreted in.
	Location string `yaml:"location,omitempty"`

	location *time.Location `yaml:"-"`
}

// Pricing contains the pricing related settings. Fields are defined as
// pointers, so it is possible to detect if they are or are not
// initialized. A nil value lets the use cases layer select a default
// value and a nil boundary value indicates that there is no bound.
type Pricing struct {
	Quarter        *settings.Duration `yaml:"quarter"`
	QuarterMinimum *settings.Duration `yaml:"quarter-minimum"`
	QuarterMaximum *settings.Duration `yaml:"quarter-maximum"`

	BasePenaltyCents        *int64 `yaml:"base-penalty-cents"`
	BasePenaltyCentsMinimum *int64 `yaml:"base-penalty-cents-minimum"`
	BasePenaltyCentsMaximum *int64 `yaml:"base-penalty-cents-maximum"`
}

// Reservations contains the reservations related settings.
type Reservations struct {
	MinDuration        *settings.Duration `yaml:"min-duration"`
	MinDurationMinimum *settings.Duration `yaml:"min-duration-minimum"`
	MinDurationMaximum *settings.Duration `yaml:"min-duration-maximum"`

	MaxDuration        *settings.Duration `yaml:"max-duration"`
	MaxDurationMinimum *settings.Duration `yaml:"max-duration-minimum"`
	MaxDurationMaximum *settings.Duration `yaml:"max-duration-maximum"`
}

// ValidateAndNormalize fills the immutable settings defaults, loads
// the time zone, and verifies that mutable settings are in range.
func (u *Usecases) ValidateAndNormalize() error {
	if u.Currency == "" {
		u.Currency = DefaultCurrency
	}
	if len(u.Currency) != 3 {
		return fmt.Errorf("invalid currency code: %q", u.Currency)
	}
	if u.Location == "" {
		u.Location = DefaultLocation
	}
	loc, err := time.LoadLocation(u.Location)
	if err != nil {
		return fmt.Errorf("loading %q location: %w", u.Location, err)
	}
	u.location = loc
	for _, v := range u.violations() {
		if v.err != nil {
			return fmt.Errorf("%s is out of range: %w", v.name, v.err)
		}
	}
	return nil
}

type violation struct {
	name       string
	value      slog.Attr
	minb, maxb slog.Attr
	err        error
}

// violations verifies the range of all mutable settings, clamping them
// to their nearest boundary values, and reports one violation item for
// each setting (having a nil err if the setting was in range).
func (u *Usecases) violations() []violation {
	vs := make([]violation, 0, 4)
	durRange := func(
		name string, v **settings.Duration, minb, maxb *settings.Duration,
	) {
		vv := violation{
			name: name,
			minb: log.Valuer("minb", minb),
			maxb: log.Valuer("maxb", maxb),
		}
		if err := settings.VerifyRange(v, minb, maxb); err != nil {
			vv.value = log.Valuer("value", err.Value)
			vv.err = err
		}
		vs = append(vs, vv)
	}
	p, r := &u.Pricing, &u.Reservations
	durRange("quarter", &p.Quarter, p.QuarterMinimum, p.QuarterMaximum)
	durRange(
		"min-duration", &r.MinDuration,
		r.MinDurationMinimum, r.MinDurationMaximum,
	)
	durRange(
		"max-duration", &r.MaxDuration,
		r.MaxDurationMinimum, r.MaxDurationMaximum,
	)
	vv := violation{
		name: "base-penalty-cents",
		minb: int64Attr("minb", p.BasePenaltyCentsMinimum),
		maxb: int64Attr("maxb", p.BasePenaltyCentsMaximum),
	}
	if err := settings.VerifyRange(
		&p.BasePenaltyCents,
		p.BasePenaltyCentsMinimum,
		p.BasePenaltyCentsMaximum,
	); err != nil {
		vv.value = int64Attr("value", err.Value)
		vv.err = err
	}
	return append(vs, vv)
}

func int64Attr(key string, v *int64) slog.Attr {
	if v == nil {
		return slog.String(key, "nil")
	}
	return slog.Int64(key, *v)
}

// Clamp adjusts the out of range mutable settings with their nearest
// boundary values, logging each adjustment as a warning.
func (u *Usecases) Clamp(ctx context.Context) {
	for _, v := range u.violations() {
		if v.err == nil {
			continue
		}
		log.Warn(
			ctx, v.name+" is adjusted by boundary values",
			v.value, v.minb, v.maxb, log.Err("violation", v.err),
		)
	}
}

// Clone creates a deep copy of the `u` settings.
func (u Usecases) Clone() Usecases {
	cu := Usecases{
		Currency: u.Currency,
		Location: u.Location,
		location: u.location,
	}
	p, cp := &u.Pricing, &cu.Pricing
	settings.OverwriteUnconditionally(&cp.Quarter, p.Quarter)
	settings.OverwriteUnconditionally(&cp.QuarterMinimum, p.QuarterMinimum)
	settings.OverwriteUnconditionally(&cp.QuarterMaximum, p.QuarterMaximum)
	settings.OverwriteUnconditionally(
		&cp.BasePenaltyCents, p.BasePenaltyCents,
	)
	settings.OverwriteUnconditionally(
		&cp.BasePenaltyCentsMinimum, p.BasePenaltyCentsMinimum,
	)
	settings.OverwriteUnconditionally(
		&cp.BasePenaltyCentsMaximum, p.BasePenaltyCentsMaximum,
	)
	r, cr := &u.Reservations, &cu.Reservations
	settings.OverwriteUnconditionally(&cr.MinDuration, r.MinDuration)
	settings.OverwriteUnconditionally(
		&cr.MinDurationMinimum, r.MinDurationMinimum,
	)
	settings.OverwriteUnconditionally(
		&cr.MinDurationMaximum, r.MinDurationMaximum,
	)
	settings.OverwriteUnconditionally(&cr.MaxDuration, r.MaxDuration)
	settings.OverwriteUnconditionally(
		&cr.MaxDurationMinimum, r.MaxDurationMinimum,
	)
	settings.OverwriteUnconditionally(
		&cr.MaxDurationMaximum, r.MaxDurationMaximum,
	)
	return cu
}

// MarshalledUsecases is the YAML serialization form of Usecases.
type MarshalledUsecases struct {
	Pricing struct {
		Quarter                 *string `yaml:"quarter,omitempty"`
		QuarterMinimum          *string `yaml:"quarter-minimum,omitempty"`
		QuarterMaximum          *string `yaml:"quarter-maximum,omitempty"`
		BasePenaltyCents        *int64  `yaml:"base-penalty-cents,omitempty"`
		BasePenaltyCentsMinimum *int64  `yaml:"base-penalty-cents-minimum,omitempty"`
		BasePenaltyCentsMaximum *int64  `yaml:"base-penalty-cents-maximum,omitempty"`
	}
	Reservations struct {
		MinDuration        *string `yaml:"min-duration,omitempty"`
		MinDurationMinimum *string `yaml:"min-duration-minimum,omitempty"`
		MinDurationMaximum *string `yaml:"min-duration-maximum,omitempty"`
		MaxDuration        *string `yaml:"max-duration,omitempty"`
		MaxDurationMinimum *string `yaml:"max-duration-minimum,omitempty"`
		MaxDurationMaximum *string `yaml:"max-duration-maximum,omitempty"`
	}
	Currency string `yaml:"currency,omitempty"`
	Location string `yaml:"location,omitempty"`
}

// Marshal creates a MarshalledUsecases instance representing `u`.
func (u *Usecases) Marshal() *MarshalledUsecases {
	m := &MarshalledUsecases{
		Currency: u.Currency,
		Location: u.Location,
	}
	p := &u.Pricing
	m.Pricing.Quarter = p.Quarter.Marshal()
	m.Pricing.QuarterMinimum = p.QuarterMinimum.Marshal()
	m.Pricing.QuarterMaximum = p.QuarterMaximum.Marshal()
	m.Pricing.BasePenaltyCents = p.BasePenaltyCents
	m.Pricing.BasePenaltyCentsMinimum = p.BasePenaltyCentsMinimum
	m.Pricing.BasePenaltyCentsMaximum = p.BasePenaltyCentsMaximum
	r := &u.Reservations
	m.Reservations.MinDuration = r.MinDuration.Marshal()
	m.Reservations.MinDurationMinimum = r.MinDurationMinimum.Marshal()
	m.Reservations.MinDurationMaximum = r.MinDurationMaximum.Marshal()
	m.Reservations.MaxDuration = r.MaxDuration.Marshal()
	m.Reservations.MaxDurationMinimum = r.MaxDurationMinimum.Marshal()
	m.Reservations.MaxDurationMaximum = r.MaxDurationMaximum.Marshal()
	return m
}

func (c *Config) newPricingEngine() (*pricing.Engine, error) {
	p := c.Usecases.Pricing
	opts := make([]pricing.Option, 0, 2)
	if p.Quarter != nil {
		opts = append(opts, pricing.WithQuarter(time.Duration(*p.Quarter)))
	}
	if p.BasePenaltyCents != nil {
		opts = append(opts, pricing.WithBasePenaltyCents(*p.BasePenaltyCents))
	}
	return pricing.New(opts...)
}

// NewAppUseCase instantiates a new application use case.
func (c *Config) NewAppUseCase(
	p repo.Pool, s appuc.SettingsRepo, d appuc.Deps,
) (*appuc.UseCase, error) {
	return appuc.New(p, s, d)
}

// NewUsersUseCase instantiates a new users use case. Login is enabled
// only if the `d` dependencies contain a token issuer.
func (c *Config) NewUsersUseCase(
	p repo.Pool, d appuc.Deps,
) (*usersuc.UseCase, error) {
	opts := make([]usersuc.Option, 0, 2)
	if d.Issuer != nil {
		opts = append(opts, usersuc.WithTokenIssuer(d.Issuer))
	}
	if d.Clock != nil {
		opts = append(opts, usersuc.WithClock(d.Clock))
	}
	return usersuc.New(p, d.Users, d.Hasher, opts...)
}

// NewParkingsUseCase instantiates a new parkings use case which prices
// the registered parkings with the configured currency.
func (c *Config) NewParkingsUseCase(
	p repo.Pool, r appuc.Repos,
) (*parkingsuc.UseCase, error) {
	return parkingsuc.New(
		p, r.Users, r.Parkings,
		parkingsuc.WithCurrency(c.Usecases.Currency),
	)
}

// NewAvailabilityUseCase instantiates a new availability use case.
func (c *Config) NewAvailabilityUseCase(
	p repo.Pool, r appuc.Repos,
) (*availuc.UseCase, error) {
	return availuc.New(p, r.Parkings, r.Reservations), nil
}

// NewReservationsUseCase instantiates a new reservations use case
// based on the pricing and reservations settings.
func (c *Config) NewReservationsUseCase(
	p repo.Pool, d appuc.Deps,
) (*reservationsuc.UseCase, error) {
	e, err := c.newPricingEngine()
	if err != nil {
		return nil, fmt.Errorf("creating pricing engine: %w", err)
	}
	opts := []reservationsuc.Option{
		reservationsuc.WithPricing(e),
		reservationsuc.WithLocation(c.Usecases.location),
	}
	rs := c.Usecases.Reservations
	if rs.MinDuration != nil {
		opts = append(opts, reservationsuc.WithMinDuration(
			time.Duration(*rs.MinDuration),
		))
	}
	if rs.MaxDuration != nil {
		opts = append(opts, reservationsuc.WithMaxDuration(
			time.Duration(*rs.MaxDuration),
		))
	}
	if d.Clock != nil {
		opts = append(opts, reservationsuc.WithClock(d.Clock))
	}
	return reservationsuc.New(
		p, d.Users, d.Parkings, d.Reservations, d.Sessions, opts...,
	)
}

// NewSessionsUseCase instantiates a new parking sessions use case.
func (c *Config) NewSessionsUseCase(
	p repo.Pool, d appuc.Deps,
) (*sessionsuc.UseCase, error) {
	e, err := c.newPricingEngine()
	if err != nil {
		return nil, fmt.Errorf("creating pricing engine: %w", err)
	}
	opts := []sessionsuc.Option{
		sessionsuc.WithPricing(e),
		sessionsuc.WithLocation(c.Usecases.location),
	}
	if d.Clock != nil {
		opts = append(opts, sessionsuc.WithClock(d.Clock))
	}
	return sessionsuc.New(
		p, d.Users, d.Parkings, d.Reservations, d.Sessions,
		d.Subscriptions, opts...,
	)
}

// NewSubscriptionsUseCase instantiates a new subscriptions use case.
func (c *Config) NewSubscriptionsUseCase(
	p repo.Pool, d appuc.Deps,
) (*subscriptionsuc.UseCase, error) {
	e, err := c.newPricingEngine()
	if err != nil {
		return nil, fmt.Errorf("creating pricing engine: %w", err)
	}
	opts := []subscriptionsuc.Option{
		subscriptionsuc.WithPricing(e),
		subscriptionsuc.WithLocation(c.Usecases.location),
	}
	if d.Clock != nil {
		opts = append(opts, subscriptionsuc.WithClock(d.Clock))
	}
	return subscriptionsuc.New(
		p, d.Users, d.Parkings, d.Subscriptions, opts...,
	)
}

// Bounds reports the minimum and maximum boundary values of the
// mutable settings, as version-independent model.Settings instances.
// A nil field indicates that the setting has no such boundary.
func (c *Config) Bounds() (minb, maxb *model.Settings) {
	p, r := c.Usecases.Pricing, c.Usecases.Reservations
	minb, maxb = &model.Settings{}, &model.Settings{}
	minb.Pricing.Quarter = p.QuarterMinimum.Std()
	maxb.Pricing.Quarter = p.QuarterMaximum.Std()
	minb.Pricing.BasePenaltyCents = clonePtr(p.BasePenaltyCentsMinimum)
	maxb.Pricing.BasePenaltyCents = clonePtr(p.BasePenaltyCentsMaximum)
	minb.Reservations.MinDuration = r.MinDurationMinimum.Std()
	maxb.Reservations.MinDuration = r.MinDurationMaximum.Std()
	minb.Reservations.MaxDuration = r.MaxDurationMinimum.Std()
	maxb.Reservations.MaxDuration = r.MaxDurationMaximum.Std()
	return minb, maxb
}

func clonePtr[T any](v *T) *T {
	var c *T
	settings.OverwriteUnconditionally(&c, v)
	return c
}
