// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"
	"time"

	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapsIsSymmetric(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }
	cases := []struct {
		s1, e1, s2, e2 int
		want           bool
	}{
		{0, 2, 1, 3, true},
		{0, 2, 2, 4, false}, // touching
		{0, 4, 1, 2, true},  // nested
		{0, 1, 3, 4, false},
		{0, 2, 0, 2, true},
	}
	for _, c := range cases {
		a := model.Overlaps(h(c.s1), h(c.e1), h(c.s2), h(c.e2))
		b := model.Overlaps(h(c.s2), h(c.e2), h(c.s1), h(c.e1))
		assert.Equal(t, c.want, a, "%+v", c)
		assert.Equal(t, a, b, "%+v", c)
	}
}

func TestTimeSlot(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	_, err := model.NewTimeSlot(start, start)
	assert.Error(t, err)

	ts, err := model.NewTimeSlot(start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ts.Duration())
	assert.True(t, ts.Contains(start))
	assert.False(t, ts.Contains(start.Add(time.Hour)))

	next, err := model.NewTimeSlot(start.Add(time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, ts.Overlaps(next))
	m, err := ts.Merge(next)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, m.Duration())

	far, err := model.NewTimeSlot(start.Add(3*time.Hour), start.Add(4*time.Hour))
	require.NoError(t, err)
	_, err = ts.Merge(far)
	assert.Error(t, err)
}
