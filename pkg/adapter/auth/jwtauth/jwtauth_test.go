// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package jwtauth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/auth/jwtauth"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte(strings.Repeat("s", jwtauth.MinSecretLength))

func TestIssueAndParse(t *testing.T) {
	i, err := jwtauth.New(secret, time.Hour, "cpweb")
	require.NoError(t, err)
	now := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	i.SetClock(func() time.Time { return now })
	u := &model.User{ID: uuid.New(), Role: model.RoleOwner}

	token, exp, err := i.Issue(u)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	p, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, model.RoleOwner, p.Role)

	now = now.Add(2 * time.Hour)
	_, err = i.Parse(token)
	assert.True(t, cerr.Is(err, cerr.KindUnauthenticated), "expired: %v", err)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	i, err := jwtauth.New(secret, time.Hour, "cpweb")
	require.NoError(t, err)
	u := &model.User{ID: uuid.New(), Role: model.RoleUser}

	other, err := jwtauth.New(
		[]byte(strings.Repeat("x", jwtauth.MinSecretLength)),
		time.Hour, "cpweb",
	)
	require.NoError(t, err)
	token, _, err := other.Issue(u)
	require.NoError(t, err)
	_, err = i.Parse(token)
	assert.True(t, cerr.Is(err, cerr.KindUnauthenticated), "secret: %v", err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  u.ID.String(),
		"iss":  "cpweb",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	token, err = unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = i.Parse(token)
	assert.True(t, cerr.Is(err, cerr.KindUnauthenticated), "none alg: %v", err)

	_, err = i.Parse("not-a-token")
	assert.True(t, cerr.Is(err, cerr.KindUnauthenticated))
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := jwtauth.New([]byte("short"), time.Hour, "cpweb")
	assert.Error(t, err)
	_, err = jwtauth.New(secret, 0, "cpweb")
	assert.Error(t, err)
}
