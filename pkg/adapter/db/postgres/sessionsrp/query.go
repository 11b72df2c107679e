// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sessionsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"gopkg.in/guregu/null.v4"
)

type gSession struct {
	ID            uuid.UUID     `gorm:"primaryKey;type:uuid"`
	UserID        uuid.UUID     `gorm:"type:uuid"`
	ParkingID     uuid.UUID     `gorm:"type:uuid"`
	ReservationID uuid.NullUUID `gorm:"type:uuid"`
	StartTime     time.Time
	EndTime       null.Time
	TotalCents    null.Int
	Currency      string
	Status        string
}

func (gs *gSession) TableName() string {
	return "parking_sessions"
}

func fromModel(s *model.ParkingSession, currency string) *gSession {
	gs := &gSession{
		ID:        s.ID,
		UserID:    s.UserID,
		ParkingID: s.ParkingID,
		StartTime: s.StartTime,
		EndTime:   null.TimeFromPtr(s.EndTime),
		Currency:  currency,
		Status:    s.Status.String(),
	}
	if s.ReservationID != nil {
		gs.ReservationID = uuid.NullUUID{UUID: *s.ReservationID, Valid: true}
	}
	if s.TotalAmount != nil {
		gs.TotalCents = null.IntFrom(s.TotalAmount.Cents())
		gs.Currency = s.TotalAmount.Currency()
	}
	return gs
}

func (gs *gSession) Model() (*model.ParkingSession, error) {
	status, err := model.ParseSessionStatus(gs.Status)
	if err != nil {
		return nil, fmt.Errorf("session %v status: %w", gs.ID, err)
	}
	s := &model.ParkingSession{
		ID:        gs.ID,
		UserID:    gs.UserID,
		ParkingID: gs.ParkingID,
		StartTime: gs.StartTime,
		EndTime:   gs.EndTime.Ptr(),
		Status:    status,
	}
	if gs.ReservationID.Valid {
		rid := gs.ReservationID.UUID
		s.ReservationID = &rid
	}
	if gs.TotalCents.Valid {
		m, err := model.NewMoney(gs.TotalCents.Int64, gs.Currency)
		if err != nil {
			return nil, fmt.Errorf("session %v amount: %w", gs.ID, err)
		}
		s.TotalAmount = &m
	}
	return s, nil
}

func first(gs []gSession) (*model.ParkingSession, error) {
	if len(gs) == 0 {
		return nil, nil
	}
	return gs[0].Model()
}

// Create inserts the s parking session. The currency column is taken
// from the parking hourly rate, so the session amount can be restored
// after it is settled.
func Create(
	ctx context.Context, tx *postgres.Tx, s *model.ParkingSession,
) error {
	currency := ""
	res := tx.GORM(ctx).Table("parkings").Select("currency").Where(
		"id=?", s.ParkingID,
	).Scan(&currency)
	if err := res.Error; err != nil {
		return fmt.Errorf("querying parking currency: %w", err)
	}
	if currency == "" {
		return cerr.NotFound(fmt.Errorf("parking %v", s.ParkingID))
	}
	res = tx.GORM(ctx).Create(fromModel(s, currency))
	if err := res.Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Finish stores the end time, total amount, and status of s.
func Finish(
	ctx context.Context, tx *postgres.Tx, s *model.ParkingSession,
) error {
	gs := fromModel(s, "")
	updates := map[string]any{
		"end_time":    gs.EndTime,
		"total_cents": gs.TotalCents,
		"status":      gs.Status,
	}
	if gs.Currency != "" {
		updates["currency"] = gs.Currency
	}
	res := tx.GORM(ctx).Model(&gSession{}).Where(
		"id=?", s.ID,
	).Updates(updates)
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

// Get finds a session by its sid identifier.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, sid uuid.UUID,
) (*model.ParkingSession, error) {
	var gs []gSession
	res := q.GORM(ctx).Where("id=?", sid).Limit(2).Find(&gs)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if n := len(gs); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return gs[0].Model()
}

// FindActive returns the active session of the uid user at the pid
// parking, or nil.
func FindActive[Q postgres.Queryer](
	ctx context.Context, q Q, uid, pid uuid.UUID,
) (*model.ParkingSession, error) {
	var gs []gSession
	res := q.GORM(ctx).Where(
		"user_id=? AND parking_id=? AND status=?",
		uid, pid, model.SessionActive.String(),
	).Order("start_time DESC").Limit(1).Find(&gs)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return first(gs)
}

// FindByReservation returns the latest session which is linked to the
// rid reservation, or nil.
func FindByReservation[Q postgres.Queryer](
	ctx context.Context, q Q, rid uuid.UUID,
) (*model.ParkingSession, error) {
	var gs []gSession
	res := q.GORM(ctx).Where(
		"reservation_id=?", rid,
	).Order("start_time DESC").Limit(1).Find(&gs)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return first(gs)
}
