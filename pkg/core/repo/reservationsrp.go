// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// Reservations is the reservations repository port.
type Reservations interface {
	Conn(Conn) ReservationsConnQueryer
	Tx(Tx) ReservationsTxQueryer
}

// ReservationsConnQueryer contains queries which may run on a
// connection (and also on a transaction).
type ReservationsConnQueryer interface {
	ReservationsQueryer
}

// ReservationsTxQueryer contains queries which need a transaction.
type ReservationsTxQueryer interface {
	ReservationsQueryer

	Create(ctx context.Context, r *model.Reservation) error
	SetStatus(
		ctx context.Context, rid uuid.UUID, s model.ReservationStatus,
	) error
}

// ReservationsQueryer contains the read-only reservation queries.
// Only pending and confirmed reservations hold a space, so they are
// the only ones which are counted or found by the overlap queries.
type ReservationsQueryer interface {
	Get(ctx context.Context, rid uuid.UUID) (*model.Reservation, error)

	ListByUser(
		ctx context.Context, uid uuid.UUID,
	) ([]model.Reservation, error)

	// CountOverlapping counts reservations of the pid parking which
	// overlap the [start, end) window. The exclude reservation is
	// not counted, if it is not nil.
	CountOverlapping(
		ctx context.Context,
		pid uuid.UUID,
		start, end time.Time,
		exclude *uuid.UUID,
	) (int, error)

	// CountCovering counts reservations of the pid parking which
	// contain the t instant.
	CountCovering(
		ctx context.Context, pid uuid.UUID, t time.Time,
	) (int, error)

	// FindCovering returns the confirmed reservation of the uid user
	// at the pid parking which contains the t instant, or nil.
	FindCovering(
		ctx context.Context, uid, pid uuid.UUID, t time.Time,
	) (*model.Reservation, error)

	// ListElapsed lists confirmed reservations which ended at or
	// before the now instant.
	ListElapsed(
		ctx context.Context, now time.Time,
	) ([]model.Reservation, error)
}
