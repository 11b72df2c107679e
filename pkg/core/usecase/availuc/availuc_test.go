// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package availuc_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/availuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

type fixture struct {
	store *memrepo.Store
	clock *memrepo.Clock
	avail *availuc.UseCase
	res   *reservationsuc.UseCase
	user  uuid.UUID
	pid   uuid.UUID
}

func newFixture(t *testing.T, spaces int) *fixture {
	t.Helper()
	s := memrepo.New()
	clk := memrepo.NewClock(t0.Add(-time.Hour))
	res, err := reservationsuc.New(
		s.Pool(), s.Users(), s.Parkings(), s.Reservations(), s.Sessions(),
		reservationsuc.WithClock(clk.Now),
	)
	require.NoError(t, err)
	owner := s.AddUser("owner@example.com", model.RoleOwner)
	return &fixture{
		store: s,
		clock: clk,
		avail: availuc.New(s.Pool(), s.Parkings(), s.Reservations()),
		res:   res,
		user:  s.AddUser("driver@example.com", model.RoleUser),
		pid:   s.AddParking(owner, spaces, model.MustMoney(200, "EUR")),
	}
}

func TestHasAvailableSpacesDuring(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a, err := f.res.Create(ctx, f.user, f.pid, at(0), at(60))
	require.NoError(t, err)
	_, err = f.res.Create(ctx, f.user, f.pid, at(30), at(90))
	require.NoError(t, err)

	cases := []struct {
		start, end int
		required   int
		exclude    *uuid.UUID
		want       bool
	}{
		{30, 60, 1, nil, false},
		{30, 60, 1, &a.ID, true},
		{60, 90, 1, nil, true},  // a ends when the window starts
		{90, 120, 2, nil, true}, // touching windows do not overlap
		{-30, 0, 2, nil, true},
		{0, 30, 2, nil, false},
	}
	for _, c := range cases {
		ok, err := f.avail.HasAvailableSpacesDuring(
			ctx, f.pid, at(c.start), at(c.end), c.required, c.exclude,
		)
		require.NoError(t, err)
		assert.Equal(t, c.want, ok, "window [%d, %d)", c.start, c.end)
	}

	_, err = f.avail.HasAvailableSpacesDuring(
		ctx, uuid.New(), at(0), at(10), 1, nil,
	)
	assert.True(t, cerr.Is(err, cerr.KindNotFound), "err: %v", err)
	_, err = f.avail.HasAvailableSpacesDuring(
		ctx, f.pid, at(10), at(10), 1, nil,
	)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "err: %v", err)
	_, err = f.avail.HasAvailableSpacesDuring(
		ctx, f.pid, at(0), at(10), 0, nil,
	)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "err: %v", err)
}

func TestAvailableSpacesAt(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	_, err := f.res.Create(ctx, f.user, f.pid, at(0), at(60))
	require.NoError(t, err)
	_, err = f.res.Create(ctx, f.user, f.pid, at(30), at(90))
	require.NoError(t, err)
	for minute, want := range map[int]int{-1: 3, 0: 2, 45: 1, 60: 2, 90: 3} {
		n, err := f.avail.AvailableSpacesAt(ctx, f.pid, at(minute))
		require.NoError(t, err)
		assert.Equal(t, want, n, "at minute %d", minute)
	}
}

// TestCounterMatchesReservations runs a random series of bookings and
// cancellations and checks that the cached counter always equals the
// total spaces minus the confirmed reservations, and that no instant
// is covered by more reservations than the parking capacity.
func TestCounterMatchesReservations(t *testing.T) {
	const spaces = 4
	f := newFixture(t, spaces)
	ctx := context.Background()
	rnd := rand.New(rand.NewPCG(1, 2))
	var booked []uuid.UUID
	for i := 0; i < 200; i++ {
		if len(booked) > 0 && rnd.IntN(3) == 0 {
			k := rnd.IntN(len(booked))
			_, err := f.res.Cancel(ctx, f.user, booked[k])
			require.NoError(t, err)
			booked = append(booked[:k], booked[k+1:]...)
		} else {
			start := at(15 * rnd.IntN(40))
			end := start.Add(time.Duration(1+rnd.IntN(8)) * 15 * time.Minute)
			r, err := f.res.Create(ctx, f.user, f.pid, start, end)
			if err == nil {
				booked = append(booked, r.ID)
			} else {
				require.True(t, cerr.Is(err, cerr.KindNoAvailableSpace), "err: %v", err)
			}
		}
		confirmed := f.store.ConfirmedReservations(f.pid)
		require.Equal(t, spaces-confirmed, f.store.Parking(f.pid).AvailableSpots)
	}
	rs, err := f.res.ListByUser(ctx, f.user)
	require.NoError(t, err)
	for m := 0; m < 15*48; m += 15 {
		covering := 0
		for i := range rs {
			if rs[i].Covers(at(m)) {
				covering++
			}
		}
		assert.LessOrEqual(t, covering, spaces, "at minute %d", m)
	}
}
