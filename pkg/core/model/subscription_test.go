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
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDatesOverlapIsInclusive(t *testing.T) {
	assert.True(t, model.DatesOverlap(
		day(2025, 1, 1), day(2025, 6, 30), day(2025, 3, 1), day(2025, 9, 30),
	))
	assert.True(t, model.DatesOverlap(
		day(2025, 1, 1), day(2025, 6, 30), day(2025, 6, 30), day(2025, 7, 5),
	))
	assert.False(t, model.DatesOverlap(
		day(2025, 1, 1), day(2025, 6, 30), day(2025, 7, 1), day(2025, 7, 5),
	))
}

func TestAuthorizedSlot(t *testing.T) {
	s := &model.Subscription{
		WeeklySlots: model.WeeklySlots{
			time.Monday: {{Start: 8 * 60, End: 10 * 60}},
		},
		StartDate: day(2025, 1, 1),
		EndDate:   day(2025, 6, 30),
		Status:    model.SubscriptionActive,
	}
	in := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	end, ok := s.AuthorizedSlot(in, time.UTC)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), end)

	tehran := time.FixedZone("IRST", 3*3600+1800)
	_, ok = s.AuthorizedSlot(in, tehran) // 12:30 local
	assert.False(t, ok)

	_, ok = s.AuthorizedSlot(in.AddDate(1, 0, 0), time.UTC)
	assert.False(t, ok)

	s.Status = model.SubscriptionCancelled
	_, ok = s.AuthorizedSlot(in, time.UTC)
	assert.False(t, ok)
}
