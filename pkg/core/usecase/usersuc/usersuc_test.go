// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package usersuc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/adapter/hash/scram"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/usersuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	issued []string
}

func (fi *fakeIssuer) Issue(u *model.User) (string, time.Time, error) {
	fi.issued = append(fi.issued, u.Email)
	return "token-of-" + u.ID.String(), time.Unix(1e9, 0), nil
}

func newUseCase(t *testing.T) (*usersuc.UseCase, *fakeIssuer) {
	t.Helper()
	s := memrepo.New()
	fi := &fakeIssuer{}
	uc, err := usersuc.New(
		s.Pool(), s.Users(), scram.SHA256(),
		usersuc.WithTokenIssuer(fi),
	)
	require.NoError(t, err)
	return uc, fi
}

func TestRegisterAndLogin(t *testing.T) {
	uc, fi := newUseCase(t)
	ctx := context.Background()
	u, err := uc.Register(
		ctx, " Alice@Example.com ", "Alice", "correct horse", model.RoleUser,
	)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Contains(t, u.PasswordHash, "SCRAM-SHA-256$4096:")

	got, err := uc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	tok, err := uc.Login(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "token-of-"+u.ID.String(), tok.AccessToken)
	assert.Equal(t, []string{"alice@example.com"}, fi.issued)

	_, err = uc.Login(ctx, "alice@example.com", "wrong horse")
	assert.True(t, cerr.Is(err, cerr.KindUnauthenticated), "err: %v", err)
	assert.True(t, errors.Is(err, usersuc.ErrBadCredentials))
	_, err = uc.Login(ctx, "bob@example.com", "correct horse")
	assert.True(t, cerr.Is(err, cerr.KindUnauthenticated), "err: %v", err)
	assert.Len(t, fi.issued, 1)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	_, err := uc.Register(ctx, "a@b.io", "A", "password1", model.RoleOwner)
	require.NoError(t, err)
	_, err = uc.Register(ctx, "A@B.io", "A2", "password2", model.RoleUser)
	assert.True(t, cerr.Is(err, cerr.KindAlreadyExists), "err: %v", err)

	bad := []struct{ email, name, pass, role string }{
		{"not-an-email", "A", "password1", "user"},
		{"c@b.io", " ", "password1", "user"},
		{"c@b.io", "C", "short", "user"},
		{"c@b.io", "C", "password1", "admin"},
	}
	for _, b := range bad {
		_, err := uc.Register(ctx, b.email, b.name, b.pass, model.UserRole(b.role))
		assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "%v: %v", b, err)
	}
}
