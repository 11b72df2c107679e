// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersrp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
)

type gUser struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

func (gu *gUser) TableName() string {
	return "users"
}

func (gu *gUser) Model() (*model.User, error) {
	role, err := model.ParseUserRole(gu.Role)
	if err != nil {
		return nil, fmt.Errorf("user %v role: %w", gu.ID, err)
	}
	return &model.User{
		ID:           gu.ID,
		Email:        gu.Email,
		Name:         gu.Name,
		PasswordHash: gu.PasswordHash,
		Role:         role,
		CreatedAt:    gu.CreatedAt,
	}, nil
}

// Create inserts the u user. The users table has a unique index on
// the lower-cased email column, so a taken email is reported as a
// cerr.AlreadyExists error.
func Create(ctx context.Context, tx *postgres.Tx, u *model.User) error {
	res := tx.GORM(ctx).Create(&gUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	})
	if err := res.Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return cerr.AlreadyExists(
				fmt.Errorf("email %q is taken: %w", u.Email, err),
			)
		}
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func one(gu []gUser) (*model.User, error) {
	if n := len(gu); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return gu[0].Model()
}

// Get finds a user by its uid identifier.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, uid uuid.UUID,
) (*model.User, error) {
	var gu []gUser
	res := q.GORM(ctx).Where("id=?", uid).Limit(2).Find(&gu)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return one(gu)
}

// GetByEmail finds a user by its email, ignoring the letter cases.
func GetByEmail[Q postgres.Queryer](
	ctx context.Context, q Q, email string,
) (*model.User, error) {
	var gu []gUser
	res := q.GORM(ctx).Where(
		"lower(email)=?", strings.ToLower(email),
	).Limit(2).Find(&gu)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return one(gu)
}
