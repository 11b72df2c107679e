// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sessionsuc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/sessionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/subscriptionsuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monday(h, m int) *time.Time {
	t := time.Date(2025, 3, 3, h, m, 0, 0, time.UTC)
	return &t
}

type fixture struct {
	store *memrepo.Store
	clock *memrepo.Clock
	res   *reservationsuc.UseCase
	subs  *subscriptionsuc.UseCase
	uc    *sessionsuc.UseCase
	user  uuid.UUID
	pid   uuid.UUID
}

func newFixture(t *testing.T, spaces int, rateCents int64) *fixture {
	t.Helper()
	s := memrepo.New()
	clk := memrepo.NewClock(*monday(8, 0))
	res, err := reservationsuc.New(
		s.Pool(), s.Users(), s.Parkings(), s.Reservations(), s.Sessions(),
		reservationsuc.WithClock(clk.Now),
	)
	require.NoError(t, err)
	subs, err := subscriptionsuc.New(
		s.Pool(), s.Users(), s.Parkings(), s.Subscriptions(),
		subscriptionsuc.WithClock(clk.Now),
	)
	require.NoError(t, err)
	uc, err := sessionsuc.New(
		s.Pool(), s.Users(), s.Parkings(), s.Reservations(), s.Sessions(),
		s.Subscriptions(), sessionsuc.WithClock(clk.Now),
	)
	require.NoError(t, err)
	owner := s.AddUser("owner@example.com", model.RoleOwner)
	return &fixture{
		store: s,
		clock: clk,
		res:   res,
		subs:  subs,
		uc:    uc,
		user:  s.AddUser("driver@example.com", model.RoleUser),
		pid:   s.AddParking(owner, spaces, model.MustMoney(rateCents, "EUR")),
	}
}

func TestOverstayAfterReservationEnd(t *testing.T) {
	f := newFixture(t, 1, 280)
	ctx := context.Background()
	r, err := f.res.Create(ctx, f.user, f.pid, *monday(9, 0), *monday(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.Parking(f.pid).AvailableSpots)

	s, err := f.uc.Enter(ctx, f.user, f.pid, monday(9, 0))
	require.NoError(t, err)
	require.NotNil(t, s.ReservationID)
	assert.Equal(t, r.ID, *s.ReservationID)
	assert.Equal(t, model.SessionActive, s.Status)

	res, err := f.uc.Exit(ctx, s.ID, monday(10, 20))
	require.NoError(t, err)
	assert.True(t, res.WasOverstayed)
	assert.Equal(t, model.SessionCompleted, res.Status)
	assert.Equal(t, 80*time.Minute, res.Duration)
	assert.Equal(t, int64(420), res.BaseAmount.Cents()) // 6 quarters
	assert.Equal(t, int64(2000+2*70), res.OverstayAmount.Cents())
	assert.Equal(t, int64(420+2140), res.TotalAmount.Cents())

	stored, err := f.uc.Get(ctx, f.user, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, stored.Status)
	require.NotNil(t, stored.TotalAmount)
	assert.Equal(t, res.TotalAmount, *stored.TotalAmount)

	got, err := f.res.Get(ctx, f.user, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationCompleted, got.Status)
	assert.Equal(t, 1, f.store.Parking(f.pid).AvailableSpots)

	inv, err := f.res.Invoice(ctx, f.user, r.ID)
	require.NoError(t, err)
	require.NotNil(t, inv.SessionID)
	assert.Equal(t, int64(20), inv.OverstayMinutes)
	assert.Equal(t, int64(140), inv.OverstayAmount.Cents())
	assert.Equal(t, int64(2000), inv.PenaltyAmount.Cents())
	assert.Equal(t, int64(280+140+2000), inv.TotalAmount.Cents())
}

func TestExitInTimeHasNoPenalty(t *testing.T) {
	f := newFixture(t, 2, 400)
	ctx := context.Background()
	_, err := f.res.Create(ctx, f.user, f.pid, *monday(9, 0), *monday(11, 0))
	require.NoError(t, err)
	s, err := f.uc.Enter(ctx, f.user, f.pid, monday(9, 10))
	require.NoError(t, err)
	res, err := f.uc.Exit(ctx, s.ID, monday(11, 0))
	require.NoError(t, err)
	assert.False(t, res.WasOverstayed)
	assert.True(t, res.OverstayAmount.IsZero())
	assert.Equal(t, int64(800), res.TotalAmount.Cents()) // 8 quarters

	_, err = f.uc.Exit(ctx, s.ID, monday(11, 5))
	assert.True(t, cerr.Is(err, cerr.KindConflict), "err: %v", err)
}

func TestEnterRequiresAuthorization(t *testing.T) {
	f := newFixture(t, 1, 280)
	ctx := context.Background()
	_, err := f.uc.Enter(ctx, f.user, f.pid, monday(9, 0))
	assert.True(t, cerr.Is(err, cerr.KindForbidden), "err: %v", err)

	_, err = f.res.Create(ctx, f.user, f.pid, *monday(9, 0), *monday(10, 0))
	require.NoError(t, err)
	_, err = f.uc.Enter(ctx, f.user, f.pid, monday(10, 0))
	assert.True(t, cerr.Is(err, cerr.KindForbidden), "end is exclusive: %v", err)

	_, err = f.uc.Enter(ctx, uuid.New(), f.pid, monday(9, 0))
	assert.True(t, cerr.Is(err, cerr.KindNotFound), "err: %v", err)
}

func TestEnterTwiceConflicts(t *testing.T) {
	f := newFixture(t, 1, 280)
	ctx := context.Background()
	_, err := f.res.Create(ctx, f.user, f.pid, *monday(9, 0), *monday(10, 0))
	require.NoError(t, err)
	_, err = f.uc.Enter(ctx, f.user, f.pid, monday(9, 0))
	require.NoError(t, err)
	_, err = f.uc.Enter(ctx, f.user, f.pid, monday(9, 5))
	assert.True(t, cerr.Is(err, cerr.KindConflict), "err: %v", err)
}

func TestEnterClosedParking(t *testing.T) {
	f := newFixture(t, 1, 280)
	f.store.SetOpeningHours(f.pid, model.OpeningHours{
		time.Monday: {Open: 12 * 60, Close: 20 * 60},
	})
	_, err := f.uc.Enter(context.Background(), f.user, f.pid, monday(9, 0))
	assert.True(t, cerr.Is(err, cerr.KindInvalidTimeWindow), "err: %v", err)
}

func TestSubscriptionAuthorizesEntry(t *testing.T) {
	f := newFixture(t, 1, 400)
	ctx := context.Background()
	slots := model.WeeklySlots{
		time.Monday: {{Start: 8 * 60, End: 10 * 60}},
	}
	sub, err := f.subs.Create(ctx, f.user, f.pid, slots, *monday(0, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, sub.Status)

	s, err := f.uc.Enter(ctx, f.user, f.pid, monday(8, 30))
	require.NoError(t, err)
	assert.Nil(t, s.ReservationID)

	res, err := f.uc.Exit(ctx, s.ID, monday(10, 5))
	require.NoError(t, err)
	assert.True(t, res.WasOverstayed)
	assert.Equal(t, int64(2000+100), res.OverstayAmount.Cents())
	assert.Equal(t, 1, f.store.Parking(f.pid).AvailableSpots)

	// Tuesday is not subscribed
	tuesday := monday(9, 0).Add(24 * time.Hour)
	_, err = f.uc.Enter(ctx, f.user, f.pid, &tuesday)
	assert.True(t, cerr.Is(err, cerr.KindForbidden), "err: %v", err)
}
