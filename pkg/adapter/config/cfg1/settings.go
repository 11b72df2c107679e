// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"errors"

	"github.com/momeni/clean-parking/pkg/adapter/config/settings"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// Serializable embeds the Settings in addition to a Version field,
// so it can be serialized and stored in the database, while the Version
// field may be consulted during its deserialization in order to ensure
// that it belongs to the same configuration format version.
// The Serializable and the main Config struct are versioned together.
// The nested Immutable pointer must be nil because the Serializable
// is supposed to carry the mutable settings which are acceptable to be
// queried from the database and may be passed to the Mutate method.
type Serializable struct {
	Version model.SemVer `json:"version"`

	Settings
}

// Settings contains those settings which are mutable & invisible,
// that is, write-only settings. It also embeds the Visible struct
// so it effectively contains all kinds of settings. There is no
// invisible setting in this version.
//
// Mutable fields have pointer types because nil is a meaningful value
// for them and asks the configuration instance not to pass their
// corresponding functional options to use cases, so they take their
// defaults. Even if a base configuration field has a non-nil value,
// but its corresponding field in the database has a nil value, it has
// to be overwritten by that nil.
type Settings struct {
	Visible
}

// Visible contains settings which are visible by end-users.
// These settings may be mutable or immutable. The immutable & visible
// settings are managed by the embedded Immutable struct. When it is
// desired to serialize and transmit settings to end-users, the
// Immutable pointer should be non-nil and its fields should be
// poppulated. However, when it is desired to fetch settings from
// end-users and deserialize them, the Immutable pointer should be set
// to nil in order to abandon them.
type Visible struct {
	Pricing struct {
		Quarter          *settings.Duration `json:"quarter"`
		BasePenaltyCents *int64             `json:"base_penalty_cents"`
	} `json:"pricing"`
	Reservations struct {
		MinDuration *settings.Duration `json:"min_duration"`
		MaxDuration *settings.Duration `json:"max_duration"`
	} `json:"reservations"`
	*Immutable
}

// Immutable contains settings which are immutable (and can be
// configured only using the configuration file or environment variables
// alone), but are visible by end-users.
type Immutable struct {
	Logger   bool   `json:"logger"`
	Currency string `json:"currency"`
	Location string `json:"location"`
}

// Mutate updates this Config instance using the given Serializable
// instance which provides the mutable settings values.
// The given Serializable instance may not contain the immutable
// settings (i.e., the Immutable pointer must be nil). Mutate does not
// verify the boundary values, so callers may decide to either clamp or
// reject the out of range values.
func (c *Config) Mutate(s Serializable) error {
	if s.Settings.Visible.Immutable != nil {
		return errors.New("immutable settings must not be set")
	}
	if v1 := c.Version(); v1 != s.Version {
		return &cerr.MismatchingSemVerError{v1, s.Version}
	}
	v := &s.Settings.Visible
	p, r := &c.Usecases.Pricing, &c.Usecases.Reservations
	settings.OverwriteUnconditionally(&p.Quarter, v.Pricing.Quarter)
	settings.OverwriteUnconditionally(
		&p.BasePenaltyCents, v.Pricing.BasePenaltyCents,
	)
	settings.OverwriteUnconditionally(
		&r.MinDuration, v.Reservations.MinDuration,
	)
	settings.OverwriteUnconditionally(
		&r.MaxDuration, v.Reservations.MaxDuration,
	)
	return nil
}

// Serializable creates and returns an instance of *Serializable
// in order to report the mutable settings, based on this Config
// instance. The Immutable pointer will be nil in the returned object.
func (c *Config) Serializable() *Serializable {
	s := &Serializable{Version: c.Version()}
	c.fillMutable(&s.Settings.Visible)
	return s
}

// Visible creates and fills an instance of Visible struct with the
// mutable and immutable settings which can be queried by end-users.
// That is, the Immutable pointer will be non-nil in the returned
// object.
func (c *Config) Visible() *Visible {
	v := &Visible{
		Immutable: &Immutable{
			// Logger is non-nil after ValidateAndNormalize.
			Logger:   *c.Gin.Logger,
			Currency: c.Usecases.Currency,
			Location: c.Usecases.Location,
		},
	}
	c.fillMutable(v)
	return v
}

func (c *Config) fillMutable(v *Visible) {
	p, r := c.Usecases.Pricing, c.Usecases.Reservations
	settings.OverwriteUnconditionally(&v.Pricing.Quarter, p.Quarter)
	settings.OverwriteUnconditionally(
		&v.Pricing.BasePenaltyCents, p.BasePenaltyCents,
	)
	settings.OverwriteUnconditionally(
		&v.Reservations.MinDuration, r.MinDuration,
	)
	settings.OverwriteUnconditionally(
		&v.Reservations.MaxDuration, r.MaxDuration,
	)
}

// Model converts `v` to the version-independent visible settings.
func (v *Visible) Model() *model.VisibleSettings {
	vs := &model.VisibleSettings{}
	vs.Pricing.Quarter = v.Pricing.Quarter.Std()
	vs.Pricing.BasePenaltyCents = clonePtr(v.Pricing.BasePenaltyCents)
	vs.Reservations.MinDuration = v.Reservations.MinDuration.Std()
	vs.Reservations.MaxDuration = v.Reservations.MaxDuration.Std()
	if im := v.Immutable; im != nil {
		vs.ImmutableSettings = &model.ImmutableSettings{
			Logger:   im.Logger,
			Currency: im.Currency,
			Location: im.Location,
		}
	}
	return vs
}

// SerializableOf converts the version-independent mutable settings
// to a Serializable instance with the latest known version. The
// immutable settings of `s` (if any) are ignored.
func SerializableOf(s *model.Settings) Serializable {
	ser := Serializable{Version: Version}
	v := &ser.Settings.Visible
	v.Pricing.Quarter = settings.FromStd(s.Pricing.Quarter)
	v.Pricing.BasePenaltyCents = clonePtr(s.Pricing.BasePenaltyCents)
	v.Reservations.MinDuration = settings.FromStd(
		s.Reservations.MinDuration,
	)
	v.Reservations.MaxDuration = settings.FromStd(
		s.Reservations.MaxDuration,
	)
	return ser
}
