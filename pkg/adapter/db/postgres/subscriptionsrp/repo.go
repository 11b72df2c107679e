// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package subscriptionsrp provides a reification of the
// repo.Subscriptions interface. Weekly slots are kept as a jsonb
// column, so conflicts are evaluated by the use cases layer.
package subscriptionsrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Repo represents the subscriptions repository.
type Repo struct {
}

// New instantiates a subscriptions Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn wraps the c connection as a read-only subscriptions queryer.
func (subscriptions *Repo) Conn(
	c repo.Conn,
) repo.SubscriptionsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Get(
	ctx context.Context, sid uuid.UUID,
) (*model.Subscription, error) {
	return Get(ctx, cq.Conn, sid)
}

func (cq connQueryer) ListActive(
	ctx context.Context, pid uuid.UUID,
) ([]model.Subscription, error) {
	return ListActive(ctx, cq.Conn, pid)
}

func (cq connQueryer) ListActiveOfUser(
	ctx context.Context, uid, pid uuid.UUID,
) ([]model.Subscription, error) {
	return ListActiveOfUser(ctx, cq.Conn, uid, pid)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx wraps the tx transaction as a subscriptions queryer which may
// also insert subscriptions.
func (subscriptions *Repo) Tx(tx repo.Tx) repo.SubscriptionsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Create(
	ctx context.Context, s *model.Subscription,
) error {
	return Create(ctx, tq.Tx, s)
}

func (tq txQueryer) Get(
	ctx context.Context, sid uuid.UUID,
) (*model.Subscription, error) {
	return Get(ctx, tq.Tx, sid)
}

func (tq txQueryer) ListActive(
	ctx context.Context, pid uuid.UUID,
) ([]model.Subscription, error) {
	return ListActive(ctx, tq.Tx, pid)
}

func (tq txQueryer) ListActiveOfUser(
	ctx context.Context, uid, pid uuid.UUID,
) ([]model.Subscription, error) {
	return ListActiveOfUser(ctx, tq.Tx, uid, pid)
}
