// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersuc contains the users UseCase which registers drivers
// and parking owners and authenticates them by their email and
// password. Passwords are only kept as SCRAM hash strings.
package usersuc

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/scram"
)

// MinPasswordLength is the shortest acceptable password.
const MinPasswordLength = 8

// hashIters is the PBKDF2 iterations count of password hashes.
const hashIters = 4096

// ErrBadCredentials indicates an unknown email or a wrong password.
// Both cases are reported identically.
var ErrBadCredentials = errors.New("invalid email or password")

// TokenIssuer creates access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *model.User) (token string, expiresAt time.Time, err error)
}

// Token is the outcome of a successful login.
type Token struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

// UseCase represents the users use case.
type UseCase struct {
	pool   repo.Pool
	users  repo.Users
	hasher scram.PasswordHasher
	issuer TokenIssuer

	now   func() time.Time
	newID func() uuid.UUID
}

// Option is a functional option for the users use case.
type Option func(uc *UseCase) error

// WithTokenIssuer configures the access token issuer. Without it,
// the Login method is unavailable.
func WithTokenIssuer(ti TokenIssuer) Option {
	return func(uc *UseCase) error {
		if ti == nil {
			return errors.New("nil token issuer")
		}
		if uc.issuer != nil {
			return errors.New("token issuer is already configured")
		}
		uc.issuer = ti
		return nil
	}
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("nil clock")
		}
		uc.now = now
		return nil
	}
}

// WithIDGenerator replaces uuid.New for new user identifiers.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(uc *UseCase) error {
		if newID == nil {
			return errors.New("nil id generator")
		}
		uc.newID = newID
		return nil
	}
}

// New instantiates a users use case.
func New(
	p repo.Pool,
	users repo.Users,
	hasher scram.PasswordHasher,
	opts ...Option,
) (*UseCase, error) {
	if hasher == nil {
		return nil, errors.New("nil password hasher")
	}
	uc := &UseCase{
		pool:   p,
		users:  users,
		hasher: hasher,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = uuid.New
	}
	return uc, nil
}

// Register creates a user with the given role. Emails are compared
// case-insensitively and must be unique (or AlreadyExists is returned).
func (uc *UseCase) Register(
	ctx context.Context,
	email, name, password string,
	role model.UserRole,
) (u *model.User, err error) {
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, cerr.InvalidArgument(err)
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, cerr.InvalidArgument(errors.New("empty name"))
	case len(password) < MinPasswordLength:
		return nil, cerr.InvalidArgument(fmt.Errorf(
			"password is shorter than %d characters", MinPasswordLength,
		))
	}
	if _, err := model.ParseUserRole(string(role)); err != nil {
		return nil, cerr.InvalidArgument(err)
	}
	h, err := uc.hasher.Hash(password, "", hashIters)
	if err != nil {
		return nil, cerr.InvalidArgument(fmt.Errorf(
			"hashing password: %w", err,
		))
	}
	u = &model.User{
		ID:           uc.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: h,
		Role:         role,
		CreatedAt:    uc.now(),
	}
	err = repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		uq := uc.users.Tx(tx)
		switch _, err := uq.GetByEmail(ctx, email); {
		case err == nil:
			return cerr.AlreadyExists(fmt.Errorf(
				"email %q is already registered", email,
			))
		case !cerr.Is(err, cerr.KindNotFound):
			return fmt.Errorf("finding user by email: %w", err)
		}
		return uq.Create(ctx, u)
	})
	if err != nil {
		u = nil
	}
	return
}

func normalizeEmail(email string) (string, error) {
	a, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("invalid email: %w", err)
	}
	if a.Name != "" {
		return "", fmt.Errorf("invalid email: %q has a display name", email)
	}
	return strings.ToLower(a.Address), nil
}

// Get finds a user by its ID.
func (uc *UseCase) Get(
	ctx context.Context, uid uuid.UUID,
) (u *model.User, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = uc.users.Conn(c).Get(ctx, uid)
		return err
	})
	if err != nil {
		u = nil
	}
	return
}

// Login verifies the email and password of a user and issues an
// access token for it.
func (uc *UseCase) Login(
	ctx context.Context, email, password string,
) (*Token, error) {
	if uc.issuer == nil {
		return nil, errors.New("no token issuer is configured")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, cerr.Authentication(ErrBadCredentials)
	}
	var u *model.User
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		u, err = uc.users.Conn(c).GetByEmail(ctx, email)
		return err
	})
	switch {
	case cerr.Is(err, cerr.KindNotFound):
		return nil, cerr.Authentication(ErrBadCredentials)
	case err != nil:
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	ok, err := uc.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, cerr.Authentication(ErrBadCredentials)
	}
	token, exp, err := uc.issuer.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Token{AccessToken: token, ExpiresAt: exp, User: u}, nil
}
