// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package reservationsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"gorm.io/gorm"
)

// holding lists the statuses which compete for the parking capacity.
var holding = []string{
	model.ReservationPending.String(),
	model.ReservationConfirmed.String(),
}

type gReservation struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	UserID     uuid.UUID `gorm:"type:uuid"`
	ParkingID  uuid.UUID `gorm:"type:uuid"`
	StartTime  time.Time
	EndTime    time.Time
	TotalCents int64
	Currency   string
	Status     string
	CreatedAt  time.Time
}

func (gr *gReservation) TableName() string {
	return "reservations"
}

func fromModel(r *model.Reservation) *gReservation {
	return &gReservation{
		ID:         r.ID,
		UserID:     r.UserID,
		ParkingID:  r.ParkingID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		TotalCents: r.TotalAmount.Cents(),
		Currency:   r.TotalAmount.Currency(),
		Status:     r.Status.String(),
		CreatedAt:  r.CreatedAt,
	}
}

func (gr *gReservation) Model() (*model.Reservation, error) {
	amount, err := model.NewMoney(gr.TotalCents, gr.Currency)
	if err != nil {
		return nil, fmt.Errorf("reservation %v amount: %w", gr.ID, err)
	}
	status, err := model.ParseReservationStatus(gr.Status)
	if err != nil {
		return nil, fmt.Errorf("reservation %v status: %w", gr.ID, err)
	}
	return &model.Reservation{
		ID:          gr.ID,
		UserID:      gr.UserID,
		ParkingID:   gr.ParkingID,
		StartTime:   gr.StartTime,
		EndTime:     gr.EndTime,
		TotalAmount: amount,
		Status:      status,
		CreatedAt:   gr.CreatedAt,
	}, nil
}

func models(gr []gReservation) ([]model.Reservation, error) {
	rr := make([]model.Reservation, 0, len(gr))
	for i := range gr {
		r, err := gr[i].Model()
		if err != nil {
			return nil, err
		}
		rr = append(rr, *r)
	}
	return rr, nil
}

// Create inserts the r reservation.
func Create(ctx context.Context, tx *postgres.Tx, r *model.Reservation) error {
	res := tx.GORM(ctx).Create(fromModel(r))
	if err := res.Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// SetStatus updates the status of the rid reservation.
func SetStatus(
	ctx context.Context,
	tx *postgres.Tx,
	rid uuid.UUID,
	s model.ReservationStatus,
) error {
	if err := s.Validate(); err != nil {
		return err
	}
	res := tx.GORM(ctx).Model(&gReservation{}).Where(
		"id=?", rid,
	).Update("status", s.String())
	if err := res.Error; err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if n := res.RowsAffected; n != 1 {
		return cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return nil
}

// Get finds a reservation by its rid identifier.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, rid uuid.UUID,
) (*model.Reservation, error) {
	var gr []gReservation
	res := q.GORM(ctx).Where("id=?", rid).Limit(2).Find(&gr)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := len(gr); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return gr[0].Model()
}

// ListByUser lists reservations of the uid user by their start times.
func ListByUser[Q postgres.Queryer](
	ctx context.Context, q Q, uid uuid.UUID,
) ([]model.Reservation, error) {
	var gr []gReservation
	res := q.GORM(ctx).Where(
		"user_id=?", uid,
	).Order("start_time").Find(&gr)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gr)
}

func holdingAt(gdb *gorm.DB, pid uuid.UUID) *gorm.DB {
	return gdb.Model(&gReservation{}).Where(
		"parking_id=? AND status IN ?", pid, holding,
	)
}

// CountOverlapping counts the space holding reservations of the pid
// parking which overlap the [start, end) half-open window, ignoring
// the exclude reservation if it is not nil.
func CountOverlapping[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	pid uuid.UUID,
	start, end time.Time,
	exclude *uuid.UUID,
) (int, error) {
	gdb := holdingAt(q.GORM(ctx), pid).Where(
		"start_time < ? AND end_time > ?", end, start,
	)
	if exclude != nil {
		gdb = gdb.Where("id<>?", *exclude)
	}
	var n int64
	if err := gdb.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return int(n), nil
}

// CountCovering counts the space holding reservations of the pid
// parking which contain the t instant.
func CountCovering[Q postgres.Queryer](
	ctx context.Context, q Q, pid uuid.UUID, t time.Time,
) (int, error) {
	var n int64
	res := holdingAt(q.GORM(ctx), pid).Where(
		"start_time <= ? AND end_time > ?", t, t,
	).Count(&n)
	if err := res.Error; err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return int(n), nil
}

// FindCovering returns the earliest confirmed reservation of the uid
// user at the pid parking which contains the t instant, or nil.
func FindCovering[Q postgres.Queryer](
	ctx context.Context, q Q, uid, pid uuid.UUID, t time.Time,
) (*model.Reservation, error) {
	var gr []gReservation
	res := q.GORM(ctx).Where(
		"user_id=? AND parking_id=? AND status=?",
		uid, pid, model.ReservationConfirmed.String(),
	).Where(
		"start_time <= ? AND end_time > ?", t, t,
	).Order("start_time").Limit(1).Find(&gr)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gr) == 0 {
		return nil, nil
	}
	return gr[0].Model()
}

// ListElapsed lists confirmed reservations which ended at or before
// the now instant.
func ListElapsed[Q postgres.Queryer](
	ctx context.Context, q Q, now time.Time,
) ([]model.Reservation, error) {
	var gr []gReservation
	res := q.GORM(ctx).Where(
		"status=? AND end_time <= ?",
		model.ReservationConfirmed.String(), now,
	).Order("start_time").Find(&gr)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return models(gr)
}
