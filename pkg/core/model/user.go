// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UserRole distinguishes normal drivers from parking owners.
type UserRole string

// Supported user roles.
const (
	RoleUser  UserRole = "user"
	RoleOwner UserRole = "owner"
)

// ErrUnknownUserRole indicates an unsupported role string.
var ErrUnknownUserRole = errors.New("unknown user role")

// ParseUserRole validates and converts s to a UserRole.
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case RoleUser, RoleOwner:
		return r, nil
	default:
		return "", ErrUnknownUserRole
	}
}

// User is a registered account. The PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
