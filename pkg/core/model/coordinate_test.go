// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateRoundTrip(t *testing.T) {
	for _, c := range []model.Coordinate{
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -33.868820, Lon: 151.209296},
		{Lat: 90, Lon: -180},
		{Lat: 0.0000004, Lon: -0.0000004},
	} {
		got, err := model.ParseCoordinate(c.String())
		require.NoError(t, err, c.String())
		assert.InDelta(t, c.Lat, got.Lat, 1e-6)
		assert.InDelta(t, c.Lon, got.Lon, 1e-6)
	}
}

func TestCoordinateValidation(t *testing.T) {
	_, err := model.NewCoordinate(91, 0)
	assert.Error(t, err)
	_, err = model.NewCoordinate(0, -181)
	assert.Error(t, err)
	_, err = model.ParseCoordinate("12.5")
	assert.Error(t, err)
	_, err = model.ParseCoordinate("a,b")
	assert.Error(t, err)
}

func TestDistance(t *testing.T) {
	paris := model.Coordinate{Lat: 48.8566, Lon: 2.3522}
	london := model.Coordinate{Lat: 51.5074, Lon: -0.1278}
	assert.InDelta(t, 343.5, paris.DistanceTo(london), 1)
	assert.InDelta(t, paris.DistanceTo(london), london.DistanceTo(paris), 1e-9)
	assert.Zero(t, paris.DistanceTo(paris))
}
