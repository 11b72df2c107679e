// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package reservationsuc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Get returns the rid reservation if it belongs to the uid user.
func (uc *UseCase) Get(
	ctx context.Context, uid, rid uuid.UUID,
) (r *model.Reservation, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		r, err = uc.getOwned(ctx, uc.reservations.Conn(c), uid, rid)
		return err
	})
	if err != nil {
		r = nil
	}
	return
}

func (uc *UseCase) getOwned(
	ctx context.Context,
	rq repo.ReservationsQueryer,
	uid, rid uuid.UUID,
) (*model.Reservation, error) {
	r, err := rq.Get(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("finding reservation %v: %w", rid, err)
	}
	if r.UserID != uid {
		return nil, cerr.Authorization(fmt.Errorf(
			"reservation %v belongs to another user", rid,
		))
	}
	return r, nil
}

// ListByUser lists all reservations of the uid user.
func (uc *UseCase) ListByUser(
	ctx context.Context, uid uuid.UUID,
) (rs []model.Reservation, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		rs, err = uc.reservations.Conn(c).ListByUser(ctx, uid)
		return err
	})
	return
}

// Invoice computes the settlement breakdown of the rid reservation
// which must belong to the uid user. If a session which is linked to
// the reservation left the parking after the reservation end time, the
// extra quarters are billed as the overstay amount and the base penalty
// is added too.
func (uc *UseCase) Invoice(
	ctx context.Context, uid, rid uuid.UUID,
) (inv *model.Invoice, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		r, err := uc.getOwned(ctx, uc.reservations.Conn(c), uid, rid)
		if err != nil {
			return err
		}
		p, err := uc.parkings.Conn(c).Get(ctx, r.ParkingID)
		if err != nil {
			return fmt.Errorf("finding parking %v: %w", r.ParkingID, err)
		}
		s, err := uc.sessions.Conn(c).FindByReservation(ctx, rid)
		if err != nil {
			return fmt.Errorf("finding linked session: %w", err)
		}
		inv, err = uc.invoice(r, p, s)
		return err
	})
	if err != nil {
		inv = nil
	}
	return
}

func (uc *UseCase) invoice(
	r *model.Reservation, p *model.Parking, s *model.ParkingSession,
) (*model.Invoice, error) {
	cur := r.TotalAmount.Currency()
	zero, err := model.ZeroMoney(cur)
	if err != nil {
		return nil, fmt.Errorf("zero amount: %w", err)
	}
	inv := &model.Invoice{
		ReservationID:  r.ID,
		BaseAmount:     r.TotalAmount,
		OverstayAmount: zero,
		PenaltyAmount:  zero,
		TotalAmount:    r.TotalAmount,
	}
	if s == nil {
		return inv, nil
	}
	inv.SessionID = &s.ID
	if s.EndTime == nil || !s.EndTime.After(r.EndTime) {
		return inv, nil
	}
	over := s.EndTime.Sub(r.EndTime)
	inv.OverstayMinutes = int64((over + time.Minute - 1) / time.Minute)
	inv.OverstayAmount, err = uc.pricing.Overstay(
		p.HourlyRate, r.EndTime, *s.EndTime,
	)
	if err != nil {
		return nil, fmt.Errorf("computing overstay: %w", err)
	}
	inv.PenaltyAmount = uc.pricing.BasePenalty(p.HourlyRate)
	total, err := r.TotalAmount.Add(inv.OverstayAmount)
	if err == nil {
		total, err = total.Add(inv.PenaltyAmount)
	}
	if err != nil {
		return nil, fmt.Errorf("summing invoice: %w", err)
	}
	inv.TotalAmount = total
	return inv, nil
}

// Sweep completes the confirmed reservations which ended before now
// while nobody is parked by them, releasing their spaces. Reservations
// which are linked to an active session are left for the check-out.
// It returns the number of completed reservations.
func (uc *UseCase) Sweep(ctx context.Context) (n int, err error) {
	now := uc.now()
	err = repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		rq := uc.reservations.Tx(tx)
		pq := uc.parkings.Tx(tx)
		sq := uc.sessions.Tx(tx)
		elapsed, err := rq.ListElapsed(ctx, now)
		if err != nil {
			return fmt.Errorf("listing elapsed reservations: %w", err)
		}
		for _, r := range elapsed {
			s, err := sq.FindByReservation(ctx, r.ID)
			if err != nil {
				return fmt.Errorf("finding session of %v: %w", r.ID, err)
			}
			if s != nil && s.Status == model.SessionActive {
				continue
			}
			lr, err := lockReservation(ctx, rq, pq, r.ID)
			if err != nil {
				return err
			}
			if lr.Status != model.ReservationConfirmed {
				continue
			}
			err = CompleteLocked(ctx, rq, pq, lr.Reservation, lr.parking)
			if err != nil {
				return fmt.Errorf("completing %v: %w", r.ID, err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		n = 0
	}
	return
}
