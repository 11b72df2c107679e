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

// Subscriptions is the subscriptions repository port.
type Subscriptions interface {
	Conn(Conn) SubscriptionsConnQueryer
	Tx(Tx) SubscriptionsTxQueryer
}

// SubscriptionsConnQueryer contains queries which may run on a
// connection.
type SubscriptionsConnQueryer interface {
	SubscriptionsQueryer
}

// SubscriptionsTxQueryer contains queries which need a transaction.
type SubscriptionsTxQueryer interface {
	SubscriptionsQueryer

	Create(ctx context.Context, s *model.Subscription) error
}

// SubscriptionsQueryer contains the read-only subscription queries.
type SubscriptionsQueryer interface {
	Get(ctx context.Context, sid uuid.UUID) (*model.Subscription, error)

	// ListActive lists the active subscriptions of the pid parking.
	ListActive(
		ctx context.Context, pid uuid.UUID,
	) ([]model.Subscription, error)

	// ListActiveOfUser lists the active subscriptions of the uid user
	// at the pid parking.
	ListActiveOfUser(
		ctx context.Context, uid, pid uuid.UUID,
	) ([]model.Subscription, error)
}
