// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package subscriptionsuc contains the subscriptions UseCase. A
// subscription books a parking space for a set of weekly wall-clock
// slots during a range of calendar dates. Two subscriptions of a
// parking conflict iff their inclusive date ranges overlap and they
// have overlapping (half-open) slots on the same weekday.
package subscriptionsuc

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
)

// MaxDurationMonths is the longest acceptable subscription.
const MaxDurationMonths = 36

// billedWeeksPerMonth is the number of weeks which a month is billed.
const billedWeeksPerMonth = 4

// UseCase represents the subscriptions use case.
type UseCase struct {
	pool          repo.Pool
	users         repo.Users
	parkings      repo.Parkings
	subscriptions repo.Subscriptions

	pricing *pricing.Engine
	loc     *time.Location
	now     func() time.Time
	newID   func() uuid.UUID
}

// Option is a functional option for the subscriptions use case.
type Option func(uc *UseCase) error

// WithPricing configures the pricing engine.
func WithPricing(e *pricing.Engine) Option {
	return func(uc *UseCase) error {
		if e == nil {
			return errors.New("nil pricing engine")
		}
		uc.pricing = e
		return nil
	}
}

// WithLocation configures the time zone of the subscription dates.
func WithLocation(loc *time.Location) Option {
	return func(uc *UseCase) error {
		if loc == nil {
			return errors.New("nil location")
		}
		uc.loc = loc
		return nil
	}
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("nil clock")
		}
		uc.now = now
		return nil
	}
}

// WithIDGenerator replaces uuid.New for new subscription identifiers.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(uc *UseCase) error {
		if newID == nil {
			return errors.New("nil id generator")
		}
		uc.newID = newID
		return nil
	}
}

// New instantiates a subscriptions use case.
func New(
	p repo.Pool,
	users repo.Users,
	parkings repo.Parkings,
	subscriptions repo.Subscriptions,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:          p,
		users:         users,
		parkings:      parkings,
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

// HasAvailableSlots reports whether the weekly slots may be subscribed
// at the pid parking for the [startDate, endDate] inclusive dates, i.e.,
// no active subscription of that parking conflicts with them.
// Unknown parkings cause a NotFound error.
func (uc *UseCase) HasAvailableSlots(
	ctx context.Context,
	pid uuid.UUID,
	slots model.WeeklySlots,
	startDate, endDate time.Time,
) (ok bool, err error) {
	if err := slots.Validate(); err != nil {
		return false, cerr.InvalidArgument(err)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if _, err := uc.parkings.Conn(c).Get(ctx, pid); err != nil {
			return fmt.Errorf("finding parking %v: %w", pid, err)
		}
		chk := NewChecker(uc.subscriptions.Conn(c))
		ok, err = chk.HasAvailableSlots(
			ctx, pid, slots, model.DateOf(startDate), model.DateOf(endDate),
		)
		return err
	})
	return
}

// Checker runs the conflict queries on a connection or transaction.
type Checker struct {
	subscriptions repo.SubscriptionsQueryer
}

// NewChecker instantiates a Checker.
func NewChecker(sq repo.SubscriptionsQueryer) Checker {
	return Checker{subscriptions: sq}
}

// HasAvailableSlots is like UseCase.HasAvailableSlots, but it expects
// normalized dates (see model.DateOf) and does not check the parking.
func (chk Checker) HasAvailableSlots(
	ctx context.Context,
	pid uuid.UUID,
	slots model.WeeklySlots,
	startDate, endDate time.Time,
) (bool, error) {
	subs, err := chk.subscriptions.ListActive(ctx, pid)
	if err != nil {
		return false, fmt.Errorf("listing active subscriptions: %w", err)
	}
	for i := range subs {
		s := &subs[i]
		if s.OverlapsDates(startDate, endDate) &&
			s.WeeklySlots.Overlaps(slots) {
			return false, nil
		}
	}
	return true, nil
}

// Create subscribes the uid user to the weekly slots of the pid
// parking for durationMonths months, starting from the startDate day.
// The last subscribed day is durationMonths months after startDate.
// The monthly amount bills the weekly quarters of all slots for four
// weeks. It fails with InvalidArgument for invalid slots or duration,
// with InvalidTimeWindow if startDate is in the past, and with
// NoAvailableSpace if an active subscription conflicts with it.
func (uc *UseCase) Create(
	ctx context.Context,
	uid, pid uuid.UUID,
	slots model.WeeklySlots,
	startDate time.Time,
	durationMonths int,
) (s *model.Subscription, err error) {
	if durationMonths < 1 || durationMonths > MaxDurationMonths {
		return nil, cerr.InvalidArgument(fmt.Errorf(
			"duration (%d months) is out of [1, %d] range",
			durationMonths, MaxDurationMonths,
		))
	}
	if err := slots.Validate(); err != nil {
		return nil, cerr.InvalidArgument(err)
	}
	now := uc.now()
	start := model.DateOf(startDate)
	if start.Before(model.DateOf(now.In(uc.loc))) {
		return nil, cerr.InvalidTimeWindow(fmt.Errorf(
			"start date (%s) is in the past", start.Format(time.DateOnly),
		))
	}
	// end date is inclusive
	end := start.AddDate(0, durationMonths, -1)
	err = repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		if _, err := uc.users.Tx(tx).Get(ctx, uid); err != nil {
			return fmt.Errorf("finding user %v: %w", uid, err)
		}
		p, err := uc.parkings.Tx(tx).Lock(ctx, pid)
		if err != nil {
			return fmt.Errorf("locking parking %v: %w", pid, err)
		}
		sq := uc.subscriptions.Tx(tx)
		ok, err := NewChecker(sq).HasAvailableSlots(
			ctx, pid, slots, start, end,
		)
		if err != nil {
			return err
		}
		if !ok {
			return cerr.NoAvailableSpace(errors.New(
				"weekly slots conflict with an active subscription",
			))
		}
		amount, err := uc.monthlyAmount(p.HourlyRate, slots)
		if err != nil {
			return err
		}
		s = &model.Subscription{
			ID:             uc.newID(),
			UserID:         uid,
			ParkingID:      pid,
			WeeklySlots:    slots,
			DurationMonths: durationMonths,
			StartDate:      start,
			EndDate:        end,
			MonthlyAmount:  amount,
			Status:         model.SubscriptionActive,
			CreatedAt:      now,
		}
		if err := sq.Create(ctx, s); err != nil {
			return fmt.Errorf("storing subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		s = nil
	}
	return
}

func (uc *UseCase) monthlyAmount(
	rate model.Money, slots model.WeeklySlots,
) (model.Money, error) {
	var quarters int64
	for _, day := range slots {
		for _, cs := range day {
			d := time.Duration(cs.Minutes()) * time.Minute
			quarters += uc.pricing.Quarters(d)
		}
	}
	m, err := uc.pricing.Charge(rate, quarters*billedWeeksPerMonth)
	if err != nil {
		return model.Money{}, fmt.Errorf("pricing slots: %w", err)
	}
	return m, nil
}

// Get returns the sid subscription if it belongs to the uid user.
func (uc *UseCase) Get(
	ctx context.Context, uid, sid uuid.UUID,
) (s *model.Subscription, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		s, err = uc.subscriptions.Conn(c).Get(ctx, sid)
		if err != nil {
			return fmt.Errorf("finding subscription %v: %w", sid, err)
		}
		if s.UserID != uid {
			return cerr.Authorization(fmt.Errorf(
				"subscription %v belongs to another user", sid,
			))
		}
		return nil
	})
	if err != nil {
		s = nil
	}
	return
}
