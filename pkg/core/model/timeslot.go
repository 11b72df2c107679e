// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"time"
)

// ErrEmptyTimeSlot indicates that a time slot end is not after its
// start instant.
var ErrEmptyTimeSlot = errors.New("time slot start must be before end")

// TimeSlot is an immutable half-open [Start, End) time interval.
// Two slots which touch each other (one ends exactly when the other
// one starts) do not overlap.
type TimeSlot struct {
	start, end time.Time
}

// NewTimeSlot validates that start is before end and returns the
// corresponding TimeSlot.
func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrEmptyTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

// Start returns the inclusive beginning of ts.
func (ts TimeSlot) Start() time.Time {
	return ts.start
}

// End returns the exclusive ending of ts.
func (ts TimeSlot) End() time.Time {
	return ts.end
}

// Duration returns End - Start which is always positive.
func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

// Overlaps reports whether ts and o share at least one instant.
// It is symmetric.
func (ts TimeSlot) Overlaps(o TimeSlot) bool {
	return Overlaps(ts.start, ts.end, o.start, o.end)
}

// Contains reports whether the t instant falls in ts.
func (ts TimeSlot) Contains(t time.Time) bool {
	return !t.Before(ts.start) && t.Before(ts.end)
}

// Merge returns the smallest slot covering both ts and o. They must
// overlap or touch each other, otherwise, a gap would be covered too
// and an error is returned.
func (ts TimeSlot) Merge(o TimeSlot) (TimeSlot, error) {
	if ts.end.Before(o.start) || o.end.Before(ts.start) {
		return TimeSlot{}, errors.New("slots are disjoint")
	}
	m := ts
	if o.start.Before(m.start) {
		m.start = o.start
	}
	if o.end.After(m.end) {
		m.end = o.end
	}
	return m, nil
}

// Overlaps reports whether [s1, e1) and [s2, e2) intervals overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}
