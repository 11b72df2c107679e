// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package availuc contains the availability UseCase which decides
// whether a parking has free capacity for a time window. The capacity
// is derived from the set of reservations on each query (rather than
// the cached Parking.AvailableSpots counter) by counting reservations
// which overlap the asked window. Two windows [s1, e1) and [s2, e2)
// overlap iff s1 < e2 && e1 > s2, so touching windows do not conflict.
//
// The Checker type runs the same queries on a caller provided queryer,
// so it may be used inside of the transaction of another use case.
package availuc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// UseCase represents the availability use case. It holds a database
// connection pool and the parkings and reservations repositories.
type UseCase struct {
	pool         repo.Pool
	parkings     repo.Parkings
	reservations repo.Reservations
}

// New instantiates an availability use case.
func New(
	p repo.Pool, parkings repo.Parkings, reservations repo.Reservations,
) *UseCase {
	return &UseCase{
		pool:         p,
		parkings:     parkings,
		reservations: reservations,
	}
}

// HasAvailableSpacesDuring reports whether the pid parking has at least
// `required` spaces which are not taken by reservations overlapping the
// [start, end) window. The exclude reservation (if not nil) is ignored,
// so an existing reservation may be checked for an update.
// Unknown parkings cause a NotFound error.
func (uc *UseCase) HasAvailableSpacesDuring(
	ctx context.Context,
	pid uuid.UUID,
	start, end time.Time,
	required int,
	exclude *uuid.UUID,
) (ok bool, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		chk := NewChecker(uc.parkings.Conn(c), uc.reservations.Conn(c))
		ok, err = chk.HasAvailableSpacesDuring(
			ctx, pid, start, end, required, exclude,
		)
		return err
	})
	return
}

// AvailableSpacesAt returns the number of spaces of the pid parking
// which are not taken by a reservation containing the t instant.
func (uc *UseCase) AvailableSpacesAt(
	ctx context.Context, pid uuid.UUID, t time.Time,
) (n int, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		chk := NewChecker(uc.parkings.Conn(c), uc.reservations.Conn(c))
		n, err = chk.AvailableSpacesAt(ctx, pid, t)
		return err
	})
	return
}

// Checker runs the availability queries using the given queryers which
// may wrap a connection or an ongoing transaction.
type Checker struct {
	parkings     repo.ParkingsQueryer
	reservations repo.ReservationsQueryer
}

// NewChecker instantiates a Checker.
func NewChecker(
	pq repo.ParkingsQueryer, rq repo.ReservationsQueryer,
) Checker {
	return Checker{parkings: pq, reservations: rq}
}

// HasAvailableSpacesDuring is like UseCase.HasAvailableSpacesDuring
// but runs on the Checker queryers.
func (chk Checker) HasAvailableSpacesDuring(
	ctx context.Context,
	pid uuid.UUID,
	start, end time.Time,
	required int,
	exclude *uuid.UUID,
) (bool, error) {
	p, err := chk.parkings.Get(ctx, pid)
	if err != nil {
		return false, fmt.Errorf("finding parking %v: %w", pid, err)
	}
	return chk.Fits(ctx, p, start, end, required, exclude)
}

// Fits reports whether `required` spaces of the already loaded p
// parking are free during the [start, end) window.
func (chk Checker) Fits(
	ctx context.Context,
	p *model.Parking,
	start, end time.Time,
	required int,
	exclude *uuid.UUID,
) (bool, error) {
	switch {
	case required <= 0:
		return false, cerr.InvalidArgument(fmt.Errorf(
			"required spaces (%d) is not positive", required,
		))
	case !start.Before(end):
		return false, cerr.InvalidArgument(fmt.Errorf(
			"window end (%v) is not after its start (%v)", end, start,
		))
	}
	n, err := chk.reservations.CountOverlapping(
		ctx, p.ID, start, end, exclude,
	)
	if err != nil {
		return false, fmt.Errorf("counting overlaps: %w", err)
	}
	return p.TotalSpaces-n >= required, nil
}

// AvailableSpacesAt is like UseCase.AvailableSpacesAt but runs on the
// Checker queryers.
func (chk Checker) AvailableSpacesAt(
	ctx context.Context, pid uuid.UUID, t time.Time,
) (int, error) {
	p, err := chk.parkings.Get(ctx, pid)
	if err != nil {
		return 0, fmt.Errorf("finding parking %v: %w", pid, err)
	}
	n, err := chk.reservations.CountCovering(ctx, pid, t)
	if err != nil {
		return 0, fmt.Errorf("counting reservations at %v: %w", t, err)
	}
	return max(0, p.TotalSpaces-n), nil
}
