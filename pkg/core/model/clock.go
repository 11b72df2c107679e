// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ClockTime is a wall-clock time of day, kept as the number of minutes
// since midnight. Valid values are in [0, 1440] where 1440 stands for
// the "24:00" end of day and may only be used as an exclusive bound.
type ClockTime int

// EndOfDay is the "24:00" ClockTime.
const EndOfDay ClockTime = 24 * 60

// ParseClockTime parses the "HH:MM" format, accepting 00:00 to 24:00.
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("expected HH:MM format: %q", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("parsing hour of %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("parsing minute of %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time of day out of range: %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// ClockTimeOf returns the wall-clock time of t in its own location.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// String formats ct as "HH:MM".
func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(ct)/60, int(ct)%60)
}

// On returns the instant of ct on the day of t (in t location).
func (ct ClockTime) On(t time.Time) time.Time {
	y, mo, d := t.Date()
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
	return midnight.Add(time.Duration(ct) * time.Minute)
}

// MarshalText encodes ct as "HH:MM".
func (ct ClockTime) MarshalText() ([]byte, error) {
	return []byte(ct.String()), nil
}

// UnmarshalText decodes the "HH:MM" format.
func (ct *ClockTime) UnmarshalText(text []byte) error {
	v, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*ct = v
	return nil
}

// ClockSlot is a half-open [Start, End) wall-clock interval within a
// single day, such as a subscription weekly slot.
type ClockSlot struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Validate ensures that Start is before End and both are in range.
func (cs ClockSlot) Validate() error {
	switch {
	case cs.Start < 0 || cs.End > EndOfDay:
		return fmt.Errorf("slot %v is out of the day range", cs)
	case cs.Start >= cs.End:
		return fmt.Errorf("slot %v does not start before its end", cs)
	}
	return nil
}

// Overlaps reports whether cs and o share at least one minute.
func (cs ClockSlot) Overlaps(o ClockSlot) bool {
	return cs.Start < o.End && cs.End > o.Start
}

// Contains reports whether ct falls in cs.
func (cs ClockSlot) Contains(ct ClockTime) bool {
	return ct >= cs.Start && ct < cs.End
}

// Minutes returns the length of cs in minutes.
func (cs ClockSlot) Minutes() int {
	return int(cs.End - cs.Start)
}

// String formats cs as "HH:MM-HH:MM".
func (cs ClockSlot) String() string {
	return cs.Start.String() + "-" + cs.End.String()
}

// WeeklySlots maps each weekday to its ordered daily slots.
type WeeklySlots map[time.Weekday][]ClockSlot

// ErrNoWeeklySlots indicates an empty weekly schedule.
var ErrNoWeeklySlots = errors.New("at least one weekly slot is needed")

// Validate checks every slot and rejects overlapping slots of a day.
// It also sorts each day slots by their start time, in place.
func (ws WeeklySlots) Validate() error {
	n := 0
	for day, slots := range ws {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid weekday: %d", day)
		}
		for _, s := range slots {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("day %v: %w", day, err)
			}
		}
		sort.Slice(slots, func(i, j int) bool {
			return slots[i].Start < slots[j].Start
		})
		for i := 1; i < len(slots); i++ {
			if slots[i-1].Overlaps(slots[i]) {
				return fmt.Errorf(
					"day %v: slots %v and %v overlap",
					day, slots[i-1], slots[i],
				)
			}
		}
		n += len(slots)
	}
	if n == 0 {
		return ErrNoWeeklySlots
	}
	return nil
}

// Overlaps reports whether ws and o have an overlapping slot on the
// same weekday.
func (ws WeeklySlots) Overlaps(o WeeklySlots) bool {
	for day, slots := range ws {
		for _, s := range slots {
			for _, s2 := range o[day] {
				if s.Overlaps(s2) {
					return true
				}
			}
		}
	}
	return false
}

// SlotAt returns the slot which contains the wall-clock time of t on
// its weekday, if any.
func (ws WeeklySlots) SlotAt(t time.Time) (ClockSlot, bool) {
	ct := ClockTimeOf(t)
	for _, s := range ws[t.Weekday()] {
		if s.Contains(ct) {
			return s, true
		}
	}
	return ClockSlot{}, false
}

// WeeklyMinutes sums the length of all slots in a week.
func (ws WeeklySlots) WeeklyMinutes() int {
	total := 0
	for _, slots := range ws {
		for _, s := range slots {
			total += s.Minutes()
		}
	}
	return total
}
