// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// Sessions is the parking sessions repository port.
type Sessions interface {
	Conn(Conn) SessionsConnQueryer
	Tx(Tx) SessionsTxQueryer
}

// SessionsConnQueryer contains queries which may run on a connection.
type SessionsConnQueryer interface {
	SessionsQueryer
}

// SessionsTxQueryer contains queries which need a transaction.
type SessionsTxQueryer interface {
	SessionsQueryer

	Create(ctx context.Context, s *model.ParkingSession) error

	// Finish stores the end time, total amount, and status of s.
	Finish(ctx context.Context, s *model.ParkingSession) error
}

// SessionsQueryer contains the read-only session queries.
type SessionsQueryer interface {
	Get(ctx context.Context, sid uuid.UUID) (*model.ParkingSession, error)

	// FindActive returns the active session of the uid user at the
	// pid parking, or nil.
	FindActive(
		ctx context.Context, uid, pid uuid.UUID,
	) (*model.ParkingSession, error)

	// FindByReservation returns the latest session which is linked
	// to the rid reservation, or nil.
	FindByReservation(
		ctx context.Context, rid uuid.UUID,
	) (*model.ParkingSession, error)
}
