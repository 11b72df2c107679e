// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sessionsuc contains the sessions UseCase which tracks the
// physical occupancy of parking spaces. A user may enter a parking if
// a confirmed reservation or an active subscription of them covers the
// entry time. On exit, the stay is priced and if the user left after
// the authorized end time (the reservation end, or the end of the
// covering subscription slot), the overstay penalty is added.
// The overstay is reported by ExitResult.WasOverstayed while the stored
// session status is always completed.
package sessionsuc

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
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
)

// UseCase represents the sessions use case.
type UseCase struct {
	pool          repo.Pool
	users         repo.Users
	parkings      repo.Parkings
	reservations  repo.Reservations
	sessions      repo.Sessions
	subscriptions repo.Subscriptions

	pricing *pricing.Engine
	loc     *time.Location
	now     func() time.Time
	newID   func() uuid.UUID
}

// New instantiates a sessions use case.
func New(
	p repo.Pool,
	users repo.Users,
	parkings repo.Parkings,
	reservations repo.Reservations,
	sessions repo.Sessions,
	subscriptions repo.Subscriptions,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:          p,
		users:         users,
		parkings:      parkings,
		reservations:  reservations,
		sessions:      sessions,
		subscriptions: subscriptions,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.pricing == nil {
		e, err := pricing.New()
		if err != nil {
			return nil, fmt.Errorf("default pricing engine: %w", err)
		}
		uc.pricing = e
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

// These errors are wrapped by the cerr errors of Enter.
var (
	ErrParkingClosed    = errors.New("parking is closed")
	ErrAlreadyCheckedIn = errors.New("user is already checked in")
	ErrNoAuthorization  = errors.New(
		"no reservation or subscription covers the entry time",
	)
)

// Enter checks the uid user in the pid parking at the `at` time, or
// now if `at` is nil. It fails with NotFound if the user or parking do
// not exist, with InvalidTimeWindow if the parking is closed, with
// Conflict if the user has an active session in the same parking, and
// with Forbidden if no reservation or subscription authorizes the entry.
func (uc *UseCase) Enter(
	ctx context.Context, uid, pid uuid.UUID, at *time.Time,
) (s *model.ParkingSession, err error) {
	t := uc.timeOrNow(at)
	err = repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		if _, err := uc.users.Tx(tx).Get(ctx, uid); err != nil {
			return fmt.Errorf("finding user %v: %w", uid, err)
		}
		p, err := uc.parkings.Tx(tx).Lock(ctx, pid)
		if err != nil {
			return fmt.Errorf("locking parking %v: %w", pid, err)
		}
		if !p.IsOpenAt(t, uc.loc) {
			return cerr.InvalidTimeWindow(ErrParkingClosed)
		}
		sq := uc.sessions.Tx(tx)
		active, err := sq.FindActive(ctx, uid, pid)
		if err != nil {
			return fmt.Errorf("finding active session: %w", err)
		}
		if active != nil {
			return cerr.Conflict(ErrAlreadyCheckedIn)
		}
		auth, err := uc.authorize(ctx, tx, uid, pid, t)
		if err != nil {
			return err
		}
		s = &model.ParkingSession{
			ID:        uc.newID(),
			UserID:    uid,
			ParkingID: pid,
			StartTime: t,
			Status:    model.SessionActive,
		}
		if auth.reservation != nil {
			rid := auth.reservation.ID
			s.ReservationID = &rid
		}
		if err := sq.Create(ctx, s); err != nil {
			return fmt.Errorf("storing session: %w", err)
		}
		return nil
	})
	if err != nil {
		s = nil
	}
	return
}

// authorization describes why an entry is permitted and until when.
type authorization struct {
	reservation *model.Reservation
	end         time.Time
}

// authorize finds a confirmed reservation which covers t, or an active
// subscription with a weekly slot which covers t, preferring the
// reservation. It fails with Forbidden if none of them exist.
func (uc *UseCase) authorize(
	ctx context.Context, tx repo.Tx, uid, pid uuid.UUID, t time.Time,
) (*authorization, error) {
	r, err := uc.reservations.Tx(tx).FindCovering(ctx, uid, pid, t)
	if err != nil {
		return nil, fmt.Errorf("finding covering reservation: %w", err)
	}
	if r != nil {
		return &authorization{reservation: r, end: r.EndTime}, nil
	}
	end, ok, err := uc.subscriptionEnd(ctx, tx, uid, pid, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, cerr.Authorization(ErrNoAuthorization)
	}
	return &authorization{end: end}, nil
}

// subscriptionEnd returns the end of the latest subscription slot of
// the uid user at the pid parking which covers t, if any.
func (uc *UseCase) subscriptionEnd(
	ctx context.Context, tx repo.Tx, uid, pid uuid.UUID, t time.Time,
) (end time.Time, ok bool, err error) {
	subs, err := uc.subscriptions.Tx(tx).ListActiveOfUser(ctx, uid, pid)
	if err != nil {
		return end, false, fmt.Errorf("listing subscriptions: %w", err)
	}
	for i := range subs {
		e, found := subs[i].AuthorizedSlot(t, uc.loc)
		if found && (!ok || e.After(end)) {
			end, ok = e, true
		}
	}
	return end, ok, nil
}

// Exit checks the sid session out at the `at` time, or now if `at` is
// nil. The stay is billed from the session start, the overstay penalty
// is added if the exit is after the authorized end, and the session is
// stored as completed. If the session was authorized by a reservation
// which is still confirmed, it is completed and its space is released.
// It fails with NotFound for unknown sessions and with Conflict if the
// session is not active.
func (uc *UseCase) Exit(
	ctx context.Context, sid uuid.UUID, at *time.Time,
) (res *model.ExitResult, err error) {
	t := uc.timeOrNow(at)
	err = repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		sq := uc.sessions.Tx(tx)
		s, err := sq.Get(ctx, sid)
		if err != nil {
			return fmt.Errorf("finding session %v: %w", sid, err)
		}
		pq := uc.parkings.Tx(tx)
		p, err := pq.Lock(ctx, s.ParkingID)
		if err != nil {
			return fmt.Errorf("locking parking %v: %w", s.ParkingID, err)
		}
		// reload after locking, so concurrent exits are serialized
		if s, err = sq.Get(ctx, sid); err != nil {
			return fmt.Errorf("reloading session %v: %w", sid, err)
		}
		if s.Status != model.SessionActive {
			return cerr.Conflict(fmt.Errorf("session is %v", s.Status))
		}
		base, err := uc.pricing.Price(p.HourlyRate, s.StartTime, t)
		if err != nil {
			return fmt.Errorf("pricing the stay: %w", err)
		}
		rq := uc.reservations.Tx(tx)
		var r *model.Reservation
		var authEnd *time.Time
		if s.ReservationID != nil {
			r, err = rq.Get(ctx, *s.ReservationID)
			if err != nil {
				return fmt.Errorf("finding linked reservation: %w", err)
			}
			authEnd = &r.EndTime
		} else {
			end, ok, err := uc.subscriptionEnd(
				ctx, tx, s.UserID, s.ParkingID, s.StartTime,
			)
			if err != nil {
				return err
			}
			if ok {
				authEnd = &end
			}
		}
		res, err = uc.settle(s, p, base, authEnd, t)
		if err != nil {
			return err
		}
		if err := sq.Finish(ctx, s); err != nil {
			return fmt.Errorf("storing finished session: %w", err)
		}
		if r != nil {
			err = reservationsuc.CompleteLocked(ctx, rq, pq, r, p)
			if err != nil {
				return fmt.Errorf("completing reservation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		res = nil
	}
	return
}

// settle computes the exit result and updates s as completed.
func (uc *UseCase) settle(
	s *model.ParkingSession,
	p *model.Parking,
	base model.Money,
	authEnd *time.Time,
	t time.Time,
) (*model.ExitResult, error) {
	penalty, err := model.ZeroMoney(base.Currency())
	if err != nil {
		return nil, fmt.Errorf("zero penalty: %w", err)
	}
	overstayed := authEnd != nil && t.After(*authEnd)
	if overstayed {
		penalty, err = uc.pricing.Penalty(p.HourlyRate, *authEnd, t)
		if err != nil {
			return nil, fmt.Errorf("computing penalty: %w", err)
		}
	}
	total, err := base.Add(penalty)
	if err != nil {
		return nil, fmt.Errorf("summing total: %w", err)
	}
	s.EndTime = &t
	s.TotalAmount = &total
	s.Status = model.SessionCompleted
	return &model.ExitResult{
		SessionID:      s.ID,
		Duration:       t.Sub(s.StartTime),
		BaseAmount:     base,
		OverstayAmount: penalty,
		TotalAmount:    total,
		WasOverstayed:  overstayed,
		Status:         s.Status,
	}, nil
}

// Get returns the sid session if it belongs to the uid user.
func (uc *UseCase) Get(
	ctx context.Context, uid, sid uuid.UUID,
) (s *model.ParkingSession, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		s, err = uc.sessions.Conn(c).Get(ctx, sid)
		if err != nil {
			return fmt.Errorf("finding session %v: %w", sid, err)
		}
		if s.UserID != uid {
			return cerr.Authorization(fmt.Errorf(
				"session %v belongs to another user", sid,
			))
		}
		return nil
	})
	if err != nil {
		s = nil
	}
	return
}

func (uc *UseCase) timeOrNow(at *time.Time) time.Time {
	if at != nil {
		return *at
	}
	return uc.now()
}
