// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package subscriptionsrp

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"gorm.io/gorm"
)

// weeklySlots is stored as a jsonb column.
type weeklySlots model.WeeklySlots

func (ws weeklySlots) Value() (driver.Value, error) {
	b, err := json.Marshal(model.WeeklySlots(ws))
	if err != nil {
		return nil, fmt.Errorf("marshaling weekly slots: %w", err)
	}
	return string(b), nil
}

func (ws *weeklySlots) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported weekly slots type: %T", src)
	}
	var m model.WeeklySlots
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("unmarshaling weekly slots: %w", err)
	}
	*ws = weeklySlots(m)
	return nil
}

type gSubscription struct {
	ID             uuid.UUID   `gorm:"primaryKey;type:uuid"`
	UserID         uuid.UUID   `gorm:"type:uuid"`
	ParkingID      uuid.UUID   `gorm:"type:uuid"`
	WeeklySlots    weeklySlots `gorm:"type:jsonb"`
	DurationMonths int
	StartDate      time.Time `gorm:"type:date"`
	EndDate        time.Time `gorm:"type:date"`
	MonthlyCents   int64
	Currency       string
	Status         string
	CreatedAt      time.Time
}

func (gs *gSubscription) TableName() string {
	return "subscriptions"
}

func fromModel(s *model.Subscription) *gSubscription {
	return &gSubscription{
		ID:             s.ID,
		UserID:         s.UserID,
		ParkingID:      s.ParkingID,
		WeeklySlots:    weeklySlots(s.WeeklySlots),
		DurationMonths: s.DurationMonths,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		MonthlyCents:   s.MonthlyAmount.Cents(),
		Currency:       s.MonthlyAmount.Currency(),
		Status:         s.Status.String(),
		CreatedAt:      s.CreatedAt,
	}
}

func (gs *gSubscription) Model() (*model.Subscription, error) {
	amount, err := model.NewMoney(gs.MonthlyCents, gs.Currency)
	if err != nil {
		return nil, fmt.Errorf("subscription %v amount: %w", gs.ID, err)
	}
	status, err := model.ParseSubscriptionStatus(gs.Status)
	if err != nil {
		return nil, fmt.Errorf("subscription %v status: %w", gs.ID, err)
	}
	return &model.Subscription{
		ID:             gs.ID,
		UserID:         gs.UserID,
		ParkingID:      gs.ParkingID,
		WeeklySlots:    model.WeeklySlots(gs.WeeklySlots),
		DurationMonths: gs.DurationMonths,
		StartDate:      model.DateOf(gs.StartDate),
		EndDate:        model.DateOf(gs.EndDate),
		MonthlyAmount:  amount,
		Status:         status,
		CreatedAt:      gs.CreatedAt,
	}, nil
}

// Create inserts the s subscription.
func Create(
	ctx context.Context, tx *postgres.Tx, s *model.Subscription,
) error {
	res := tx.GORM(ctx).Create(fromModel(s))
	if err := res.Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Get finds a subscription by its sid identifier.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, sid uuid.UUID,
) (*model.Subscription, error) {
	var gs []gSubscription
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

func listActive(gdb *gorm.DB) ([]model.Subscription, error) {
	var gs []gSubscription
	res := gdb.Where(
		"status=?", model.SubscriptionActive.String(),
	).Order("start_date").Find(&gs)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	ss := make([]model.Subscription, 0, len(gs))
	for i := range gs {
		s, err := gs[i].Model()
		if err != nil {
			return nil, err
		}
		ss = append(ss, *s)
	}
	return ss, nil
}

// ListActive lists the active subscriptions of the pid parking.
func ListActive[Q postgres.Queryer](
	ctx context.Context, q Q, pid uuid.UUID,
) ([]model.Subscription, error) {
	return listActive(q.GORM(ctx).Where("parking_id=?", pid))
}

// ListActiveOfUser lists the active subscriptions of the uid user at
// the pid parking.
func ListActiveOfUser[Q postgres.Queryer](
	ctx context.Context, q Q, uid, pid uuid.UUID,
) ([]model.Subscription, error) {
	return listActive(q.GORM(ctx).Where(
		"user_id=? AND parking_id=?", uid, pid,
	))
}
