// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sessionsrp provides a reification of the repo.Sessions
// interface on top of the parking_sessions table.
package sessionsrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Repo represents the parking sessions repository.
type Repo struct {
}

// New instantiates a sessions Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn, and wraps it as a read-only queryer.
func (sessions *Repo) Conn(c repo.Conn) repo.SessionsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(
	ctx context.Context, sid uuid.UUID,
) (*model.ParkingSession, error) {
	return Get(ctx, cq.Conn, sid)
}

func (cq connQueryer) FindActive(
	ctx context.Context, uid, pid uuid.UUID,
) (*model.ParkingSession, error) {
	return FindActive(ctx, cq.Conn, uid, pid)
}

func (cq connQueryer) FindByReservation(
	ctx context.Context, rid uuid.UUID,
) (*model.ParkingSession, error) {
	return FindByReservation(ctx, cq.Conn, rid)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx, and wraps it as a sessions queryer which may also
// insert or finish sessions.
func (sessions *Repo) Tx(tx repo.Tx) repo.SessionsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(
	ctx context.Context, s *model.ParkingSession,
) error {
	return Create(ctx, tq.Tx, s)
}

func (tq txQueryer) Finish(
	ctx context.Context, s *model.ParkingSession,
) error {
	return Finish(ctx, tq.Tx, s)
}

func (tq txQueryer) Get(
	ctx context.Context, sid uuid.UUID,
) (*model.ParkingSession, error) {
	return Get(ctx, tq.Tx, sid)
}

func (tq txQueryer) FindActive(
	ctx context.Context, uid, pid uuid.UUID,
) (*model.ParkingSession, error) {
	return FindActive(ctx, tq.Tx, uid, pid)
}

func (tq txQueryer) FindByReservation(
	ctx context.Context, rid uuid.UUID,
) (*model.ParkingSession, error) {
	return FindByReservation(ctx, tq.Tx, rid)
}
