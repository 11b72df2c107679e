// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parkingsuc_test

import (
	"context"
	"testing"

	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/parkingsuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndNearby(t *testing.T) {
	s := memrepo.New()
	uc, err := parkingsuc.New(
		s.Pool(), s.Users(), s.Parkings(), parkingsuc.WithCurrency("EUR"),
	)
	require.NoError(t, err)
	ctx := context.Background()
	owner := s.AddUser("owner@example.com", model.RoleOwner)
	driver := s.AddUser("driver@example.com", model.RoleUser)

	tmpl := model.Parking{
		Name:        "Louvre",
		Coordinate:  model.Coordinate{Lat: 48.8606, Lon: 2.3376},
		HourlyRate:  model.MustMoney(450, "EUR"),
		TotalSpaces: 40,
	}
	louvre, err := uc.Register(ctx, owner, &tmpl)
	require.NoError(t, err)
	assert.Equal(t, 40, louvre.AvailableSpots)
	assert.Equal(t, owner, louvre.OwnerID)

	tmpl.Name = "Bastille"
	tmpl.Coordinate = model.Coordinate{Lat: 48.8532, Lon: 2.3692}
	_, err = uc.Register(ctx, owner, &tmpl)
	require.NoError(t, err)

	tmpl.Name = "Lyon"
	tmpl.Coordinate = model.Coordinate{Lat: 45.7640, Lon: 4.8357}
	_, err = uc.Register(ctx, owner, &tmpl)
	require.NoError(t, err)

	_, err = uc.Register(ctx, driver, &tmpl)
	assert.True(t, cerr.Is(err, cerr.KindForbidden), "err: %v", err)

	tmpl.HourlyRate = model.MustMoney(450, "USD")
	_, err = uc.Register(ctx, owner, &tmpl)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "err: %v", err)

	eiffel := model.Coordinate{Lat: 48.8584, Lon: 2.2945}
	near, err := uc.Nearby(ctx, eiffel, 10)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, "Louvre", near[0].Name)
	assert.Equal(t, "Bastille", near[1].Name)
	assert.Less(t, near[0].DistanceKm, near[1].DistanceKm)

	_, err = uc.Nearby(ctx, model.Coordinate{Lat: 91}, 1)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "err: %v", err)

	got, err := uc.Get(ctx, louvre.ID)
	require.NoError(t, err)
	assert.Equal(t, "Louvre", got.Name)
}
