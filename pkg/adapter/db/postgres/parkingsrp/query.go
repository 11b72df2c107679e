// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package parkingsrp

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"gorm.io/gorm/clause"
)

// openingHours is stored as a jsonb column.
type openingHours model.OpeningHours

func (oh openingHours) Value() (driver.Value, error) {
	if oh == nil {
		return "{}", nil
	}
	b, err := json.Marshal(model.OpeningHours(oh))
	if err != nil {
		return nil, fmt.Errorf("marshaling opening hours: %w", err)
	}
	return string(b), nil
}

func (oh *openingHours) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*oh = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported opening hours type: %T", src)
	}
	var m model.OpeningHours
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("unmarshaling opening hours: %w", err)
	}
	*oh = openingHours(m)
	return nil
}

type gParking struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	OwnerID         uuid.UUID `gorm:"type:uuid"`
	Name            string
	Address         string
	Coordinate      model.Coordinate `gorm:"embedded"`
	HourlyRateCents int64
	Currency        string
	TotalSpaces     int
	AvailableSpots  int
	OpeningHours    openingHours `gorm:"type:jsonb"`
	CreatedAt       time.Time
}

func (gp *gParking) TableName() string {
	return "parkings"
}

func fromModel(p *model.Parking) *gParking {
	return &gParking{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Name:            p.Name,
		Address:         p.Address,
		Coordinate:      p.Coordinate,
		HourlyRateCents: p.HourlyRate.Cents(),
		Currency:        p.HourlyRate.Currency(),
		TotalSpaces:     p.TotalSpaces,
		AvailableSpots:  p.AvailableSpots,
		OpeningHours:    openingHours(p.OpeningHours),
		CreatedAt:       p.CreatedAt,
	}
}

func (gp *gParking) Model() (*model.Parking, error) {
	rate, err := model.NewMoney(gp.HourlyRateCents, gp.Currency)
	if err != nil {
		return nil, fmt.Errorf("parking %v rate: %w", gp.ID, err)
	}
	return &model.Parking{
		ID:             gp.ID,
		OwnerID:        gp.OwnerID,
		Name:           gp.Name,
		Address:        gp.Address,
		Coordinate:     gp.Coordinate,
		HourlyRate:     rate,
		TotalSpaces:    gp.TotalSpaces,
		AvailableSpots: gp.AvailableSpots,
		OpeningHours:   model.OpeningHours(gp.OpeningHours),
		CreatedAt:      gp.CreatedAt,
	}, nil
}

func one(gp []gParking) (*model.Parking, error) {
	if n := len(gp); n != 1 {
		return nil, cerr.NotFound(
			fmt.Errorf("expected one row, but got %d", n),
		)
	}
	return gp[0].Model()
}

// Create inserts the p parking.
func Create[Q postgres.Queryer](
	ctx context.Context, q Q, p *model.Parking,
) error {
	res := q.GORM(ctx).Create(fromModel(p))
	if err := res.Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Get finds a parking by its pid identifier.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, pid uuid.UUID,
) (*model.Parking, error) {
	var gp []gParking
	res := q.GORM(ctx).Where("id=?", pid).Limit(2).Find(&gp)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return one(gp)
}

// Lock finds a parking by its pid identifier and locks its row with
// a FOR UPDATE clause until the tx transaction ends.
func Lock(
	ctx context.Context, tx *postgres.Tx, pid uuid.UUID,
) (*model.Parking, error) {
	var gp []gParking
	res := tx.GORM(ctx).Clauses(
		clause.Locking{Strength: "UPDATE"},
	).Where("id=?", pid).Find(&gp)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return one(gp)
}

// List returns all parkings, sorted by their names.
func List[Q postgres.Queryer](
	ctx context.Context, q Q,
) ([]model.Parking, error) {
	var gp []gParking
	res := q.GORM(ctx).Order("name").Find(&gp)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	pp := make([]model.Parking, 0, len(gp))
	for i := range gp {
		p, err := gp[i].Model()
		if err != nil {
			return nil, err
		}
		pp = append(pp, *p)
	}
	return pp, nil
}

// SetAvailableSpots stores n as the available spots counter of the
// pid parking. The database check constraint rejects out of range
// values.
func SetAvailableSpots(
	ctx context.Context, tx *postgres.Tx, pid uuid.UUID, n int,
) error {
	if n < 0 {
		return errors.New("available spots is negative")
	}
	res := tx.GORM(ctx).Model(&gParking{}).Where(
		"id=?", pid,
	).Update("available_spots", n)
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
