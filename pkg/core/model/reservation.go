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

// ReservationStatus specifies the reservation lifecycle state.
// Although this enum is numeric, it is (de)serialized as a string for
// readability in the adapter layer.
type ReservationStatus int

// Valid values for the ReservationStatus enum. The cancelled and
// completed states are terminal.
const (
	ReservationInvalid ReservationStatus = iota // zero value is invalid

	ReservationPending
	ReservationConfirmed
	ReservationCancelled
	ReservationCompleted
)

// ErrUnknownReservationStatus indicates that a given string may not be
// parsed as a known reservation status.
var ErrUnknownReservationStatus = errors.New("unknown reservation status")

// ReservationStatusError indicates an invalid numeric status.
type ReservationStatusError int

// Error implements the error interface.
func (e ReservationStatusError) Error() string {
	return fmt.Sprintf("invalid reservation status: %d", e)
}

// Validate returns nil if rs is a known status.
func (rs ReservationStatus) Validate() error {
	switch rs {
	case ReservationPending, ReservationConfirmed,
		ReservationCancelled, ReservationCompleted:
		return nil
	default:
		return ReservationStatusError(rs)
	}
}

// String converts rs to a string. Invalid values cause a panic.
func (rs ReservationStatus) String() string {
	switch rs {
	case ReservationPending:
		return "pending"
	case ReservationConfirmed:
		return "confirmed"
	case ReservationCancelled:
		return "cancelled"
	case ReservationCompleted:
		return "completed"
	default:
		panic(ReservationStatusError(rs))
	}
}

// ParseReservationStatus is the reverse of String.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch s {
	case "pending":
		return ReservationPending, nil
	case "confirmed":
		return ReservationConfirmed, nil
	case "cancelled":
		return ReservationCancelled, nil
	case "completed":
		return ReservationCompleted, nil
	default:
		return ReservationInvalid, ErrUnknownReservationStatus
	}
}

// MarshalText encodes rs with its String representation.
func (rs ReservationStatus) MarshalText() ([]byte, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return []byte(rs.String()), nil
}

// UnmarshalText decodes rs with ParseReservationStatus.
func (rs *ReservationStatus) UnmarshalText(text []byte) (err error) {
	*rs, err = ParseReservationStatus(string(text))
	return
}

// HoldsSpace reports whether a reservation with this status competes
// for the parking capacity.
func (rs ReservationStatus) HoldsSpace() bool {
	return rs == ReservationPending || rs == ReservationConfirmed
}

// Reservation is a time-boxed booking of one space in a parking.
// The user and parking are referenced by their IDs only.
type Reservation struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	ParkingID   uuid.UUID         `json:"parking_id"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	TotalAmount Money             `json:"total_amount"`
	Status      ReservationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Slot returns the reservation window as a TimeSlot.
func (r *Reservation) Slot() TimeSlot {
	return TimeSlot{start: r.StartTime, end: r.EndTime}
}

// Covers reports whether r holds a space at the t instant.
func (r *Reservation) Covers(t time.Time) bool {
	return r.Status.HoldsSpace() && r.Slot().Contains(t)
}
