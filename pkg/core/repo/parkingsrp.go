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

// Parkings is the parkings repository port. It wraps a connection or
// a transaction and returns a queryer which may run the queries.
type Parkings interface {
	Conn(Conn) ParkingsConnQueryer
	Tx(Tx) ParkingsTxQueryer
}

// ParkingsConnQueryer contains queries which may run on a connection.
type ParkingsConnQueryer interface {
	ParkingsQueryer
}

// ParkingsTxQueryer contains queries which need an open transaction.
type ParkingsTxQueryer interface {
	ParkingsQueryer

	// Lock fetches the pid parking and keeps its row locked for
	// update until the transaction ends. All capacity mutations
	// must lock the parking first, so they are serialized.
	Lock(ctx context.Context, pid uuid.UUID) (*model.Parking, error)

	// SetAvailableSpots stores the available spots counter.
	SetAvailableSpots(ctx context.Context, pid uuid.UUID, n int) error
}

// ParkingsQueryer contains queries which may run on a connection or
// an ongoing transaction. Missing parkings cause cerr.NotFound errors.
type ParkingsQueryer interface {
	Create(ctx context.Context, p *model.Parking) error
	Get(ctx context.Context, pid uuid.UUID) (*model.Parking, error)
	List(ctx context.Context) ([]model.Parking, error)
}
