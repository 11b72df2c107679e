// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package subscriptionsuc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/subscriptionsuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func slot(day time.Weekday, from, to int) model.WeeklySlots {
	return model.WeeklySlots{
		day: {{Start: model.ClockTime(from * 60), End: model.ClockTime(to * 60)}},
	}
}

func setup(t *testing.T) (*subscriptionsuc.UseCase, uuid.UUID, uuid.UUID) {
	t.Helper()
	s := memrepo.New()
	clk := memrepo.NewClock(date(2024, time.December, 1))
	uc, err := subscriptionsuc.New(
		s.Pool(), s.Users(), s.Parkings(), s.Subscriptions(),
		subscriptionsuc.WithClock(clk.Now),
	)
	require.NoError(t, err)
	owner := s.AddUser("owner@example.com", model.RoleOwner)
	user := s.AddUser("driver@example.com", model.RoleUser)
	pid := s.AddParking(owner, 10, model.MustMoney(300, "EUR"))
	return uc, user, pid
}

func TestOverlappingSubscriptionsConflict(t *testing.T) {
	uc, user, pid := setup(t)
	ctx := context.Background()

	x, err := uc.Create(
		ctx, user, pid, slot(time.Monday, 8, 10),
		date(2025, time.January, 1), 6,
	)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 30), x.EndDate)
	// 8 quarters per week, billed for 4 weeks
	assert.Equal(t, int64(8*4*75), x.MonthlyAmount.Cents())

	ok, err := uc.HasAvailableSlots(
		ctx, pid, slot(time.Monday, 9, 11),
		date(2025, time.March, 1), date(2025, time.September, 30),
	)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = uc.Create(
		ctx, user, pid, slot(time.Monday, 9, 11),
		date(2025, time.March, 1), 7,
	)
	assert.True(t, cerr.Is(err, cerr.KindNoAvailableSpace), "err: %v", err)
}

func TestDisjointSubscriptionsAreAccepted(t *testing.T) {
	uc, user, pid := setup(t)
	ctx := context.Background()
	_, err := uc.Create(
		ctx, user, pid, slot(time.Monday, 8, 10),
		date(2025, time.January, 1), 6,
	)
	require.NoError(t, err)

	cases := map[string]struct {
		slots      model.WeeklySlots
		start, end time.Time
	}{
		"touching slot": {
			slot(time.Monday, 10, 12),
			date(2025, time.March, 1), date(2025, time.April, 1),
		},
		"other weekday": {
			slot(time.Tuesday, 8, 10),
			date(2025, time.March, 1), date(2025, time.April, 1),
		},
		"later dates": {
			slot(time.Monday, 8, 10),
			date(2025, time.July, 2), date(2025, time.August, 1),
		},
	}
	for name, c := range cases {
		ok, err := uc.HasAvailableSlots(ctx, pid, c.slots, c.start, c.end)
		require.NoError(t, err, name)
		assert.True(t, ok, name)
	}
	_, err = uc.HasAvailableSlots(
		ctx, uuid.New(), slot(time.Monday, 8, 10),
		date(2025, time.March, 1), date(2025, time.April, 1),
	)
	assert.True(t, cerr.Is(err, cerr.KindNotFound), "err: %v", err)
}

func TestCreateValidatesInput(t *testing.T) {
	uc, user, pid := setup(t)
	ctx := context.Background()
	_, err := uc.Create(
		ctx, user, pid, slot(time.Monday, 8, 10), date(2025, 1, 1), 0,
	)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "err: %v", err)
	_, err = uc.Create(
		ctx, user, pid, slot(time.Monday, 10, 8), date(2025, 1, 1), 1,
	)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument), "err: %v", err)
	_, err = uc.Create(
		ctx, user, pid, slot(time.Monday, 8, 10), date(2024, 11, 30), 1,
	)
	assert.True(t, cerr.Is(err, cerr.KindInvalidTimeWindow), "err: %v", err)

	x, err := uc.Create(
		ctx, user, pid, slot(time.Monday, 8, 10), date(2024, 12, 1), 1,
	)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 12, 31), x.EndDate, "one month ends a day early")
}

func TestGetChecksOwner(t *testing.T) {
	uc, user, pid := setup(t)
	ctx := context.Background()
	s, err := uc.Create(
		ctx, user, pid, slot(time.Friday, 18, 22), date(2025, 2, 7), 2,
	)
	require.NoError(t, err)
	got, err := uc.Get(ctx, user, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.WeeklySlots, got.WeeklySlots)
	_, err = uc.Get(ctx, uuid.New(), s.ID)
	assert.True(t, cerr.Is(err, cerr.KindForbidden), "err: %v", err)
}
