// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import "time"

// Settings contains those settings which are mutable & invisible,
// that is, write-only settings. It also embeds the VisibleSettings
// struct, so it effectively contains all kinds of settings.
// When fetching settings from end-users, the nested ImmutableSettings
// pointer must be nil and when reporting settings, the embedded
// VisibleSettings struct can be reported alone (having a non-nil
// ImmutableSettings pointer) in order to exclude invisible settings.
type Settings struct {
	VisibleSettings
}

// VisibleSettings contains settings which are visible by end-users.
// These settings may be mutable or immutable. The immutable & visible
// settings are managed by the embedded ImmutableSettings struct.
// Nil fields are left uninitialized, so the use cases take defaults.
type VisibleSettings struct {
	// Pricing contains the billing granularity and overstay penalty.
	Pricing PricingSettings `json:"pricing"`

	// Reservations contains the reservation duration bounds.
	Reservations ReservationSettings `json:"reservations"`

	*ImmutableSettings
}

// PricingSettings represents the mutable pricing related settings.
type PricingSettings struct {
	// Quarter is the billing unit, 15 minutes by default.
	Quarter *time.Duration `json:"quarter"`

	// BasePenaltyCents is the fixed overstay penalty in cents of the
	// parking hourly rate currency, 2000 by default.
	BasePenaltyCents *int64 `json:"base_penalty_cents"`
}

// ReservationSettings represents the mutable reservation settings.
type ReservationSettings struct {
	MinDuration *time.Duration `json:"min_duration"`
	MaxDuration *time.Duration `json:"max_duration"`
}

// ImmutableSettings contains settings which are immutable (and can be
// configured only using the configuration file or environment variables
// alone), but are visible by end-users.
type ImmutableSettings struct {
	// Logger reports if server-side REST API logging is enabled.
	Logger bool `json:"logger"`

	// Currency is the ISO code which new parkings are priced with.
	Currency string `json:"currency"`

	// Location is the time zone name which opening hours and weekly
	// subscription slots are interpreted in.
	Location string `json:"location"`
}
