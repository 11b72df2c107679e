package model

import "github.com/google/uuid"

// Invoice is a read-only settlement projection of a reservation.
// The overstay fields are computed from the linked parking session
// (if any) which left the parking after the reservation end time.
type Invoice struct {
	ReservationID   uuid.UUID  `json:"reservation_id"`
	SessionID       *uuid.UUID `json:"session_id,omitempty"`
	BaseAmount      Money      `json:"base_amount"`
	OverstayMinutes int64      `json:"overstay_minutes"`
	OverstayAmount  Money      `json:"overstay_amount"`
	PenaltyAmount   Money      `json:"penalty_amount"`
	TotalAmount     Money      `json:"total_amount"`
}
