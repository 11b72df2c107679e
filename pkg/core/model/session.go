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

// SessionStatus specifies the parking session state.
type SessionStatus int

// Valid values for the SessionStatus enum. The overstayed value is
// accepted by storage, but an exit always stores completed and reports
// the overstay fact through ExitResult.WasOverstayed.
const (
	SessionInvalid SessionStatus = iota // zero value is invalid

	SessionActive
	SessionCompleted
	SessionOverstayed
)

// ErrUnknownSessionStatus indicates an unknown session status string.
var ErrUnknownSessionStatus = errors.New("unknown session status")

// SessionStatusError indicates an invalid numeric session status.
type SessionStatusError int

// Error implements the error interface.
func (e SessionStatusError) Error() string {
	return fmt.Sprintf("invalid session status: %d", e)
}

// String converts ss to a string. Invalid values cause a panic.
func (ss SessionStatus) String() string {
	switch ss {
	case SessionActive:
		return "active"
	case SessionCompleted:
		return "completed"
	case SessionOverstayed:
		return "overstayed"
	default:
		panic(SessionStatusError(ss))
	}
}

// ParseSessionStatus is the reverse of String.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch s {
	case "active":
		return SessionActive, nil
	case "completed":
		return SessionCompleted, nil
	case "overstayed":
		return SessionOverstayed, nil
	default:
		return SessionInvalid, ErrUnknownSessionStatus
	}
}

// MarshalText encodes ss with its String representation.
func (ss SessionStatus) MarshalText() ([]byte, error) {
	switch ss {
	case SessionActive, SessionCompleted, SessionOverstayed:
		return []byte(ss.String()), nil
	default:
		return nil, SessionStatusError(ss)
	}
}

// UnmarshalText decodes ss with ParseSessionStatus.
func (ss *SessionStatus) UnmarshalText(text []byte) (err error) {
	*ss, err = ParseSessionStatus(string(text))
	return
}

// ParkingSession tracks the physical occupancy of a space, from the
// entry (check-in) to the exit (check-out) of a user. ReservationID
// links the session to the reservation which authorized its entry, if
// any, as a plain identifier (the session does not own it).
type ParkingSession struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	ParkingID     uuid.UUID     `json:"parking_id"`
	ReservationID *uuid.UUID    `json:"reservation_id,omitempty"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	TotalAmount   *Money        `json:"total_amount,omitempty"`
	Status        SessionStatus `json:"status"`
}

// ExitResult reports the settlement of a finished parking session.
type ExitResult struct {
	SessionID      uuid.UUID     `json:"session_id"`
	Duration       time.Duration `json:"duration"`
	BaseAmount     Money         `json:"base_amount"`
	OverstayAmount Money         `json:"overstay_penalty"`
	TotalAmount    Money         `json:"total_amount"`
	WasOverstayed  bool          `json:"was_overstayed"`
	Status         SessionStatus `json:"status"`
}
