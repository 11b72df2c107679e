// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package jwtauth issues and verifies the HS256 signed bearer tokens.
// The token subject is the user identifier and a role claim carries
// the user role, so the REST resources may authorize owners without
// querying the users repository.
package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// MinSecretLength is the minimum accepted HMAC secret length in bytes.
const MinSecretLength = 32

// Claims are the registered claims plus the user role.
type Claims struct {
	Role model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Principal identifies the authenticated user of a request.
type Principal struct {
	UserID uuid.UUID
	Role   model.UserRole
}

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	name   string
	now    func() time.Time
}

// New creates an Issuer. Issued tokens expire after ttl and carry
// name as their iss claim.
func New(secret []byte, ttl time.Duration, name string) (*Issuer, error) {
	switch {
	case len(secret) < MinSecretLength:
		return nil, fmt.Errorf(
			"secret is shorter than %d bytes", MinSecretLength,
		)
	case ttl <= 0:
		return nil, fmt.Errorf("token ttl (%v) is not positive", ttl)
	}
	return &Issuer{
		secret: secret,
		ttl:    ttl,
		name:   name,
		now:    time.Now,
	}, nil
}

// SetClock replaces time.Now, e.g., for testing the expiration.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

// Issue creates a signed token for u.
func (i *Issuer) Issue(u *model.User) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := &Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return s, exp, nil
}

// Parse verifies the token signature, expiration, and issuer and
// returns its principal. All failures are reported as
// cerr.Unauthenticated errors.
func (i *Issuer) Parse(token string) (*Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.name),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, cerr.Authentication(fmt.Errorf("parsing token: %w", err))
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, cerr.Authentication(fmt.Errorf("token subject: %w", err))
	}
	role, err := model.ParseUserRole(string(claims.Role))
	if err != nil {
		return nil, cerr.Authentication(errors.New("token role is invalid"))
	}
	return &Principal{UserID: uid, Role: role}, nil
}
