// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reservationsuc contains the reservations UseCase which
// creates, cancels, and completes time-boxed bookings of a parking
// space. Every operation which changes the capacity of a parking runs
// in one transaction which locks the parking row before checking the
// availability and keeps it locked until the reservation and the
// parking counter are both stored, so concurrent bookings of the same
// parking are serialized and can not overbook it.
package reservationsuc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/pricing"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/usecase/availuc"
)

// Default reservation duration bounds.
const (
	DefaultMinDuration = 15 * time.Minute
	DefaultMaxDuration = 24 * time.Hour
)

// UseCase represents the reservations use case. It holds a database
// connection pool, the relevant repositories, the pricing engine, and
// the reservation specific settings.
type UseCase struct {
	pool         repo.Pool
	users        repo.Users
	parkings     repo.Parkings
	reservations repo.Reservations
	sessions     repo.Sessions

	pricing     *pricing.Engine
	minDuration time.Duration
	maxDuration time.Duration
	loc         *time.Location
	now         func() time.Time
	newID       func() uuid.UUID
}

// New instantiates a reservations use case.
func New(
	p repo.Pool,
	users repo.Users,
	parkings repo.Parkings,
	reservations repo.Reservations,
	sessions repo.Sessions,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:         p,
		users:        users,
		parkings:     parkings,
		reservations: reservations,
		sessions:     sessions,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.pricing == nil {
		e, err := pricing.New()
		if err != nil {
			return nil, fmt.Errorf("default pricing engine: %w", err)
		}
		uc.pricing = e
	}
	if uc.minDuration == 0 {
		uc.minDuration = DefaultMinDuration
	}
	if uc.maxDuration == 0 {
		uc.maxDuration = DefaultMaxDuration
	}
	if uc.minDuration > uc.maxDuration {
		return nil, fmt.Errorf(
			"min duration (%v) is greater than max duration (%v)",
			uc.minDuration, uc.maxDuration,
		)
	}
	if uc.loc == nil {
		uc.loc = time.UTC
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = uuid.New
	}
	return uc, nil
}

// Create books one space of the pid parking for the uid user during
// the [start, end) window. The reservation is created as confirmed
// and the parking available spots counter is decremented.
//
// It fails with NotFound if the user or parking do not exist, with
// InvalidTimeWindow if the window starts in the past, is shorter or
// longer than the configured bounds, or is not covered by the parking
// opening hours, and with NoAvailableSpace if the capacity is used.
func (uc *UseCase) Create(
	ctx context.Context, uid, pid uuid.UUID, start, end time.Time,
) (r *model.Reservation, err error) {
	now := uc.now()
	err = repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		if _, err := uc.users.Tx(tx).Get(ctx, uid); err != nil {
			return fmt.Errorf("finding user %v: %w", uid, err)
		}
		pq := uc.parkings.Tx(tx)
		p, err := pq.Lock(ctx, pid)
		if err != nil {
			return fmt.Errorf("locking parking %v: %w", pid, err)
		}
		if err := uc.validateWindow(now, start, end); err != nil {
			return err
		}
		if !p.IsOpenDuring(start, end, uc.loc) {
			return cerr.InvalidTimeWindow(fmt.Errorf(
				"parking is closed during [%v, %v)", start, end,
			))
		}
		if p.AvailableSpots <= 0 {
			return cerr.NoAvailableSpace(model.ErrNoSpotLeft)
		}
		rq := uc.reservations.Tx(tx)
		chk := availuc.NewChecker(pq, rq)
		ok, err := chk.Fits(ctx, p, start, end, 1, nil)
		if err != nil {
			return fmt.Errorf("checking availability: %w", err)
		}
		if !ok {
			return cerr.NoAvailableSpace(fmt.Errorf(
				"all %d spaces are reserved during [%v, %v)",
				p.TotalSpaces, start, end,
			))
		}
		amount, err := uc.pricing.Price(p.HourlyRate, start, end)
		if err != nil {
			return fmt.Errorf("pricing: %w", err)
		}
		r = &model.Reservation{
			ID:          uc.newID(),
			UserID:      uid,
			ParkingID:   pid,
			StartTime:   start,
			EndTime:     end,
			TotalAmount: amount,
			Status:      model.ReservationConfirmed,
			CreatedAt:   now,
		}
		if err := rq.Create(ctx, r); err != nil {
			return fmt.Errorf("storing reservation: %w", err)
		}
		if err := p.ReserveSpot(); err != nil {
			return cerr.NoAvailableSpace(err)
		}
		if err := pq.SetAvailableSpots(ctx, pid, p.AvailableSpots); err != nil {
			return fmt.Errorf("updating available spots: %w", err)
		}
		return nil
	})
	if err != nil {
		r = nil
	}
	return
}

func (uc *UseCase) validateWindow(now, start, end time.Time) error {
	d := end.Sub(start)
	switch {
	case start.Before(now):
		return cerr.InvalidTimeWindow(fmt.Errorf(
			"start (%v) is in the past", start,
		))
	case d <= 0:
		return cerr.InvalidTimeWindow(fmt.Errorf(
			"end (%v) is not after start (%v)", end, start,
		))
	case d < uc.minDuration:
		return cerr.InvalidTimeWindow(fmt.Errorf(
			"duration (%v) is shorter than %v", d, uc.minDuration,
		))
	case d > uc.maxDuration:
		return cerr.InvalidTimeWindow(fmt.Errorf(
			"duration (%v) is longer than %v", d, uc.maxDuration,
		))
	}
	return nil
}

// ErrAlreadyCancelled indicates a second cancellation attempt.
var ErrAlreadyCancelled = errors.New("reservation is already cancelled")

// ErrSessionActive indicates that the car of a reservation is parked.
var ErrSessionActive = errors.New("reservation has an active session")

// Cancel cancels the rid reservation on behalf of the uid user and
// releases its parking space. Only the user who owns the reservation
// may cancel it (otherwise Forbidden) and only strictly before its
// start time (otherwise InvalidTimeWindow). Cancelling a reservation
// which is not confirmed anymore, or whose linked session has not
// checked out yet, fails with Conflict.
func (uc *UseCase) Cancel(
	ctx context.Context, uid, rid uuid.UUID,
) (*model.Reservation, error) {
	now := uc.now()
	var lr *lockedReservation
	err := repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) (err error) {
		rq := uc.reservations.Tx(tx)
		pq := uc.parkings.Tx(tx)
		lr, err = lockReservation(ctx, rq, pq, rid)
		if err != nil {
			return err
		}
		switch {
		case lr.UserID != uid:
			return cerr.Authorization(fmt.Errorf(
				"reservation %v belongs to another user", rid,
			))
		case lr.Status == model.ReservationCancelled:
			return cerr.Conflict(ErrAlreadyCancelled)
		case !lr.Status.HoldsSpace():
			return cerr.Conflict(fmt.Errorf(
				"reservation is %v", lr.Status,
			))
		case !now.Before(lr.StartTime):
			return cerr.InvalidTimeWindow(fmt.Errorf(
				"reservation has started at %v", lr.StartTime,
			))
		}
		s, err := uc.sessions.Tx(tx).FindByReservation(ctx, rid)
		if err != nil {
			return fmt.Errorf("finding session of %v: %w", rid, err)
		}
		if s != nil && s.Status == model.SessionActive {
			return cerr.Conflict(ErrSessionActive)
		}
		err = rq.SetStatus(ctx, rid, model.ReservationCancelled)
		if err != nil {
			return fmt.Errorf("storing cancelled status: %w", err)
		}
		lr.Status = model.ReservationCancelled
		return releaseSpot(ctx, pq, lr.parking)
	})
	if err != nil {
		return nil, err
	}
	return lr.Reservation, nil
}

// Complete marks the confirmed rid reservation as completed and
// releases its parking space. It is used when the reservation was
// consumed without a check-out, e.g., by an operator. Completing a
// reservation which is not confirmed fails with Conflict.
func (uc *UseCase) Complete(
	ctx context.Context, rid uuid.UUID,
) (*model.Reservation, error) {
	var lr *lockedReservation
	err := repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) (err error) {
		rq := uc.reservations.Tx(tx)
		pq := uc.parkings.Tx(tx)
		lr, err = lockReservation(ctx, rq, pq, rid)
		if err != nil {
			return err
		}
		if lr.Status != model.ReservationConfirmed {
			return cerr.Conflict(fmt.Errorf(
				"reservation is %v", lr.Status,
			))
		}
		return CompleteLocked(ctx, rq, pq, lr.Reservation, lr.parking)
	})
	if err != nil {
		return nil, err
	}
	return lr.Reservation, nil
}

// CompleteLocked transitions the confirmed r reservation to completed
// and releases one space of its p parking, using queryers of an open
// transaction. The p parking must be locked by that transaction.
// Reservations which are not confirmed are left intact.
func CompleteLocked(
	ctx context.Context,
	rq repo.ReservationsTxQueryer,
	pq repo.ParkingsTxQueryer,
	r *model.Reservation,
	p *model.Parking,
) error {
	if r.Status != model.ReservationConfirmed {
		return nil
	}
	err := rq.SetStatus(ctx, r.ID, model.ReservationCompleted)
	if err != nil {
		return fmt.Errorf("storing completed status: %w", err)
	}
	r.Status = model.ReservationCompleted
	return releaseSpot(ctx, pq, p)
}

func releaseSpot(
	ctx context.Context, pq repo.ParkingsTxQueryer, p *model.Parking,
) error {
	if err := p.ReleaseSpot(); err != nil {
		return fmt.Errorf("releasing a spot of %v: %w", p.ID, err)
	}
	if err := pq.SetAvailableSpots(ctx, p.ID, p.AvailableSpots); err != nil {
		return fmt.Errorf("updating available spots: %w", err)
	}
	return nil
}

type lockedReservation struct {
	*model.Reservation
	parking *model.Parking
}

// lockReservation locks the parking of the rid reservation and then
// reads the reservation again, so its status may not be changed by
// another transaction until the current one ends.
func lockReservation(
	ctx context.Context,
	rq repo.ReservationsTxQueryer,
	pq repo.ParkingsTxQueryer,
	rid uuid.UUID,
) (*lockedReservation, error) {
	r, err := rq.Get(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("finding reservation %v: %w", rid, err)
	}
	p, err := pq.Lock(ctx, r.ParkingID)
	if err != nil {
		return nil, fmt.Errorf("locking parking %v: %w", r.ParkingID, err)
	}
	r, err = rq.Get(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("reloading reservation %v: %w", rid, err)
	}
	return &lockedReservation{Reservation: r, parking: p}, nil
}
