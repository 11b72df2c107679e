// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersrp provides a reification of the repo.Users interface.
package usersrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Repo represents the users repository.
type Repo struct {
}

// New instantiates a users Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

func (users *Repo) Conn(c repo.Conn) repo.UsersConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(
	ctx context.Context, uid uuid.UUID,
) (*model.User, error) {
	return Get(ctx, cq.Conn, uid)
}

func (cq connQueryer) GetByEmail(
	ctx context.Context, email string,
) (*model.User, error) {
	return GetByEmail(ctx, cq.Conn, email)
}

type txQueryer struct {
	*postgres.Tx
}

func (users *Repo) Tx(tx repo.Tx) repo.UsersTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(ctx context.Context, u *model.User) error {
	return Create(ctx, tq.Tx, u)
}

func (tq txQueryer) Get(
	ctx context.Context, uid uuid.UUID,
) (*model.User, error) {
	return Get(ctx, tq.Tx, uid)
}

func (tq txQueryer) GetByEmail(
	ctx context.Context, email string,
) (*model.User, error) {
	return GetByEmail(ctx, tq.Tx, email)
}
