// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus specifies the subscription state.
type SubscriptionStatus int

// Valid values for the SubscriptionStatus enum.
const (
	SubscriptionInvalid SubscriptionStatus = iota // zero value is invalid

	SubscriptionActive
	SubscriptionExpired
	SubscriptionCancelled
)

// ErrUnknownSubscriptionStatus indicates an unknown status string.
var ErrUnknownSubscriptionStatus = errors.New(
	"unknown subscription status",
)

// SubscriptionStatusError indicates an invalid numeric status.
type SubscriptionStatusError int

// Error implements the error interface.
func (e SubscriptionStatusError) Error() string {
	return fmt.Sprintf("invalid subscription status: %d", e)
}

// String converts ss to a string. Invalid values cause a panic.
func (ss SubscriptionStatus) String() string {
	switch ss {
	case SubscriptionActive:
		return "active"
	case SubscriptionExpired:
		return "expired"
	case SubscriptionCancelled:
		return "cancelled"
	default:
		panic(SubscriptionStatusError(ss))
	}
}

// ParseSubscriptionStatus is the reverse of String.
func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	switch s {
	case "active":
		return SubscriptionActive, nil
	case "expired":
		return SubscriptionExpired, nil
	case "cancelled":
		return SubscriptionCancelled, nil
	default:
		return SubscriptionInvalid, ErrUnknownSubscriptionStatus
	}
}

// MarshalText encodes ss with its String representation.
func (ss SubscriptionStatus) MarshalText() ([]byte, error) {
	switch ss {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return []byte(ss.String()), nil
	default:
		return nil, SubscriptionStatusError(ss)
	}
}

// UnmarshalText decodes ss with ParseSubscriptionStatus.
func (ss *SubscriptionStatus) UnmarshalText(text []byte) (err error) {
	*ss, err = ParseSubscriptionStatus(string(text))
	return
}

// Subscription is a recurring weekly booking of a parking space in
// a range of calendar dates. StartDate and EndDate are both inclusive
// and are kept as midnight UTC instants of their calendar dates.
type Subscription struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	ParkingID      uuid.UUID          `json:"parking_id"`
	WeeklySlots    WeeklySlots        `json:"weekly_slots"`
	DurationMonths int                `json:"duration_months"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	MonthlyAmount  Money              `json:"monthly_amount"`
	Status         SubscriptionStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

// DateOf returns the calendar date of t (in t location) as a midnight
// UTC instant, so dates from different locations can be compared.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatesOverlap reports whether [s1, e1] and [s2, e2] inclusive date
// ranges overlap.
func DatesOverlap(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// OverlapsDates reports whether s date range overlaps [start, end].
func (s *Subscription) OverlapsDates(start, end time.Time) bool {
	return DatesOverlap(s.StartDate, s.EndDate, start, end)
}

// AuthorizedSlot returns the weekly slot of an active subscription
// which covers the t instant, evaluated as a wall-clock time in the loc
// location. The returned instant is the end of that slot on the t day,
// i.e., the latest instant that the subscriber may occupy a space.
func (s *Subscription) AuthorizedSlot(
	t time.Time, loc *time.Location,
) (end time.Time, ok bool) {
	if s.Status != SubscriptionActive {
		return time.Time{}, false
	}
	lt := t.In(loc)
	d := DateOf(lt)
	if d.Before(s.StartDate) || d.After(s.EndDate) {
		return time.Time{}, false
	}
	slot, ok := s.WeeklySlots.SlotAt(lt)
	if !ok {
		return time.Time{}, false
	}
	return slot.End.On(lt), true
}
