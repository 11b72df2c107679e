// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// AddUser stores a user with the given role and returns its ID.
func (s *Store) AddUser(email string, role model.UserRole) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{
		ID:        uuid.New(),
		Email:     email,
		Name:      email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.st.users[u.ID] = u
	return u.ID
}

// AddParking stores an always open parking of ownerID with all of
// its spaces available and returns its ID.
func (s *Store) AddParking(
	ownerID uuid.UUID, totalSpaces int, hourlyRate model.Money,
) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Parking{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           "parking-" + uuid.NewString()[:8],
		Coordinate:     model.Coordinate{Lat: 48.8566, Lon: 2.3522},
		HourlyRate:     hourlyRate,
		TotalSpaces:    totalSpaces,
		AvailableSpots: totalSpaces,
		CreatedAt:      time.Now(),
	}
	s.st.parkings[p.ID] = p
	return p.ID
}

// SetOpeningHours replaces the opening hours of the pid parking.
func (s *Store) SetOpeningHours(pid uuid.UUID, oh model.OpeningHours) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.st.parkings[pid]
	p.OpeningHours = oh
	s.st.parkings[pid] = p
}

// Parking returns a copy of the pid parking, or a zero Parking.
func (s *Store) Parking(pid uuid.UUID) model.Parking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyParking(s.st.parkings[pid])
}

// ConfirmedReservations counts the confirmed reservations of pid.
func (s *Store) ConfirmedReservations(pid uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.st.reservations {
		if r.ParkingID == pid && r.Status == model.ReservationConfirmed {
			n++
		}
	}
	return n
}

// AddActiveSession stores an active session of the uid user at the pid
// parking which started at start and is linked to the rid reservation
// (if not nil), returning its identifier.
func (s *Store) AddActiveSession(
	uid, pid uuid.UUID, rid *uuid.UUID, start time.Time,
) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := model.ParkingSession{
		ID:            uuid.New(),
		UserID:        uid,
		ParkingID:     pid,
		ReservationID: rid,
		StartTime:     start,
		Status:        model.SessionActive,
	}
	s.st.sessions[ps.ID] = ps
	return ps.ID
}
