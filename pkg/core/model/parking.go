// Copyright (c) 2023-2024 Behnam Momeni
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

// Parking is the aggregate root which owns the capacity counters of
// a parking. The AvailableSpots field is a cached mirror of the total
// spaces minus the confirmed reservations which is updated eagerly
// by the reservation and session use cases. It must always stay in the
// [0, TotalSpaces] range which is enforced by the ReserveSpot and
// ReleaseSpot methods.
type Parking struct {
	ID             uuid.UUID    `json:"id"`
	OwnerID        uuid.UUID    `json:"owner_id"`
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Coordinate     Coordinate   `json:"coordinate"`
	HourlyRate     Money        `json:"hourly_rate"`
	TotalSpaces    int          `json:"total_spaces"`
	AvailableSpots int          `json:"available_spots"`
	OpeningHours   OpeningHours `json:"opening_hours"`
	CreatedAt      time.Time    `json:"created_at"`
}

// These errors are returned when a parking capacity counter would
// leave its acceptable range.
var (
	ErrNoSpotLeft     = errors.New("no available spot is left")
	ErrAllSpotsUnused = errors.New("all spots are already available")
)

// Validate checks the Parking invariants.
func (p *Parking) Validate() error {
	switch {
	case p.Name == "":
		return errors.New("name is empty")
	case p.TotalSpaces <= 0:
		return fmt.Errorf("total spaces (%d) is not positive", p.TotalSpaces)
	case p.AvailableSpots < 0 || p.AvailableSpots > p.TotalSpaces:
		return fmt.Errorf(
			"available spots (%d) is out of [0, %d] range",
			p.AvailableSpots, p.TotalSpaces,
		)
	case p.HourlyRate.IsZero():
		return errors.New("hourly rate is not positive")
	}
	if err := p.Coordinate.Validate(); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if err := p.OpeningHours.Validate(); err != nil {
		return fmt.Errorf("opening hours: %w", err)
	}
	return nil
}

// ReserveSpot decrements the AvailableSpots counter by one.
func (p *Parking) ReserveSpot() error {
	if p.AvailableSpots <= 0 {
		return ErrNoSpotLeft
	}
	p.AvailableSpots--
	return nil
}

// ReleaseSpot increments the AvailableSpots counter by one.
func (p *Parking) ReleaseSpot() error {
	if p.AvailableSpots >= p.TotalSpaces {
		return ErrAllSpotsUnused
	}
	p.AvailableSpots++
	return nil
}

// IsOpenAt reports whether the parking is open at t, evaluating the
// opening hours with the wall-clock time of t in the loc location.
func (p *Parking) IsOpenAt(t time.Time, loc *time.Location) bool {
	return p.OpeningHours.IsOpenAt(t.In(loc))
}

// IsOpenDuring reports whether the parking is open at every hour of
// the [start, end) window, stepping one hour at a time from start, and
// also at the last minute of the window. Hourly stepping covers the
// multi-day windows too.
func (p *Parking) IsOpenDuring(
	start, end time.Time, loc *time.Location,
) bool {
	if p.OpeningHours.AlwaysOpen() {
		return true
	}
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		if !p.IsOpenAt(t, loc) {
			return false
		}
	}
	return p.IsOpenAt(end.Add(-time.Minute), loc)
}

// OpeningHours maps each weekday to its open/close times. An empty
// OpeningHours means that the parking is always open, while a missing
// weekday in a non-empty OpeningHours means it is closed in that day.
// A Close which is not after the Open time means that the parking
// stays open past the midnight, i.e., it is open from Open to the end
// of that day and from the beginning of the next day to the Close time.
// The next day is open in those early hours even if it has no entry.
type OpeningHours map[time.Weekday]DailyHours

// DailyHours holds the opening and closing wall-clock times of a day.
type DailyHours struct {
	Open  ClockTime `json:"open"`
	Close ClockTime `json:"close"`
}

// AlwaysOpen reports whether no schedule is configured.
func (oh OpeningHours) AlwaysOpen() bool {
	return len(oh) == 0
}

// Validate checks the weekday keys and the time of day values.
func (oh OpeningHours) Validate() error {
	for day, h := range oh {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid weekday: %d", day)
		}
		if h.Open < 0 || h.Open >= EndOfDay || h.Close < 0 ||
			h.Close > EndOfDay {
			return fmt.Errorf("day %v: hours out of range", day)
		}
	}
	return nil
}

// IsOpenAt reports whether the wall-clock time of t (in its own
// location) falls within the opening hours of its weekday, or within
// the past midnight hours of the previous weekday.
func (oh OpeningHours) IsOpenAt(t time.Time) bool {
	if oh.AlwaysOpen() {
		return true
	}
	ct := ClockTimeOf(t)
	if h, ok := oh[t.Weekday()]; ok {
		if h.Open < h.Close {
			if ct >= h.Open && ct < h.Close {
				return true
			}
		} else if ct >= h.Open {
			return true
		}
	}
	prev := (t.Weekday() + 6) % 7
	h, ok := oh[prev]
	return ok && h.Close <= h.Open && ct < h.Close
}
