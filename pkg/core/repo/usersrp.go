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

// Users is the users repository port.
type Users interface {
	Conn(Conn) UsersConnQueryer
	Tx(Tx) UsersTxQueryer
}

// UsersConnQueryer contains queries which may run on a connection.
type UsersConnQueryer interface {
	UsersQueryer
}

// UsersTxQueryer contains queries which need a transaction.
type UsersTxQueryer interface {
	UsersQueryer

	// Create inserts u, failing with cerr.AlreadyExists if its email
	// is taken.
	Create(ctx context.Context, u *model.User) error
}

// UsersQueryer contains the read-only user queries.
type UsersQueryer interface {
	Get(ctx context.Context, uid uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
