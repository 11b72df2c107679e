// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parkingsrp provides a reification of the repo.Parkings
// interface, storing parkings in the parkings table.
package parkingsrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Repo represents the parkings repository.
type Repo struct {
}

// New instantiates a parkings Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn, and wraps it as a parkings queryer.
func (parkings *Repo) Conn(c repo.Conn) repo.ParkingsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Create(ctx context.Context, p *model.Parking) error {
	return Create(ctx, cq.Conn, p)
}

func (cq connQueryer) Get(
	ctx context.Context, pid uuid.UUID,
) (*model.Parking, error) {
	return Get(ctx, cq.Conn, pid)
}

func (cq connQueryer) List(ctx context.Context) ([]model.Parking, error) {
	return List(ctx, cq.Conn)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx, and wraps it as a parkings queryer which may also
// lock parkings rows.
func (parkings *Repo) Tx(tx repo.Tx) repo.ParkingsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(ctx context.Context, p *model.Parking) error {
	return Create(ctx, tq.Tx, p)
}

func (tq txQueryer) Get(
	ctx context.Context, pid uuid.UUID,
) (*model.Parking, error) {
	return Get(ctx, tq.Tx, pid)
}

func (tq txQueryer) List(ctx context.Context) ([]model.Parking, error) {
	return List(ctx, tq.Tx)
}

func (tq txQueryer) Lock(
	ctx context.Context, pid uuid.UUID,
) (*model.Parking, error) {
	return Lock(ctx, tq.Tx, pid)
}

func (tq txQueryer) SetAvailableSpots(
	ctx context.Context, pid uuid.UUID, n int,
) error {
	return SetAvailableSpots(ctx, tq.Tx, pid, n)
}
