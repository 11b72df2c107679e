// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reservationsrp provides a reification of the
// repo.Reservations interface on top of the reservations table.
// Overlap queries are served by a partial index which only contains
// the pending and confirmed reservations.
package reservationsrp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Repo represents the reservations repository.
type Repo struct {
}

// New instantiates a reservations Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn, and wraps it as a read-only queryer.
func (reservations *Repo) Conn(
	c repo.Conn,
) repo.ReservationsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(
	ctx context.Context, rid uuid.UUID,
) (*model.Reservation, error) {
	return Get(ctx, cq.Conn, rid)
}

func (cq connQueryer) ListByUser(
	ctx context.Context, uid uuid.UUID,
) ([]model.Reservation, error) {
	return ListByUser(ctx, cq.Conn, uid)
}

func (cq connQueryer) CountOverlapping(
	ctx context.Context,
	pid uuid.UUID,
	start, end time.Time,
	exclude *uuid.UUID,
) (int, error) {
	return CountOverlapping(ctx, cq.Conn, pid, start, end, exclude)
}

func (cq connQueryer) CountCovering(
	ctx context.Context, pid uuid.UUID, t time.Time,
) (int, error) {
	return CountCovering(ctx, cq.Conn, pid, t)
}

func (cq connQueryer) FindCovering(
	ctx context.Context, uid, pid uuid.UUID, t time.Time,
) (*model.Reservation, error) {
	return FindCovering(ctx, cq.Conn, uid, pid, t)
}

func (cq connQueryer) ListElapsed(
	ctx context.Context, now time.Time,
) ([]model.Reservation, error) {
	return ListElapsed(ctx, cq.Conn, now)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx, and wraps it as a reservations queryer which may
// also insert or update reservations.
func (reservations *Repo) Tx(tx repo.Tx) repo.ReservationsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(ctx context.Context, r *model.Reservation) error {
	return Create(ctx, tq.Tx, r)
}

func (tq txQueryer) SetStatus(
	ctx context.Context, rid uuid.UUID, s model.ReservationStatus,
) error {
	return SetStatus(ctx, tq.Tx, rid, s)
}

func (tq txQueryer) Get(
	ctx context.Context, rid uuid.UUID,
) (*model.Reservation, error) {
	return Get(ctx, tq.Tx, rid)
}

func (tq txQueryer) ListByUser(
	ctx context.Context, uid uuid.UUID,
) ([]model.Reservation, error) {
	return ListByUser(ctx, tq.Tx, uid)
}

func (tq txQueryer) CountOverlapping(
	ctx context.Context,
	pid uuid.UUID,
	start, end time.Time,
	exclude *uuid.UUID,
) (int, error) {
	return CountOverlapping(ctx, tq.Tx, pid, start, end, exclude)
}

func (tq txQueryer) CountCovering(
	ctx context.Context, pid uuid.UUID, t time.Time,
) (int, error) {
	return CountCovering(ctx, tq.Tx, pid, t)
}

func (tq txQueryer) FindCovering(
	ctx context.Context, uid, pid uuid.UUID, t time.Time,
) (*model.Reservation, error) {
	return FindCovering(ctx, tq.Tx, uid, pid, t)
}

func (tq txQueryer) ListElapsed(
	ctx context.Context, now time.Time,
) ([]model.Reservation, error) {
	return ListElapsed(ctx, tq.Tx, now)
}
