// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/parkingsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/scram"
	"gorm.io/gorm/clause"
)

// DevPassword is the password of the development sample users.
const DevPassword = "cpweb-dev-password"

// Emails of the development sample users.
const (
	DevOwnerEmail  = "owner@cpweb.local"
	DevDriverEmail = "driver@cpweb.local"
)

const devPasswordIters = 4096

type gSettings struct {
	ID     int    `gorm:"primaryKey"`
	Config string `gorm:"type:jsonb"`
}

func (gs *gSettings) TableName() string {
	return "settings"
}

// Initializer fills a migrated schema with its initial rows. It wraps
// a transaction which must be committed by the caller.
type Initializer struct {
	tx       *postgres.Tx
	hasher   scram.Hasher
	currency string
}

// NewInitializer creates an Initializer for the tx transaction. The
// hasher is used for the sample users passwords and currency is used
// for the sample parkings hourly rates.
func NewInitializer(
	tx repo.Tx, hasher scram.Hasher, currency string,
) *Initializer {
	return &Initializer{
		tx:       tx.(*postgres.Tx),
		hasher:   hasher,
		currency: currency,
	}
}

// PersistSettings upserts the serialized mutable settings as the
// only row of the settings table.
func (i *Initializer) PersistSettings(
	ctx context.Context, mutableSettings []byte,
) error {
	return StoreSettings(ctx, i.tx, mutableSettings)
}

// StoreSettings upserts the serialized mutable settings as the only
// row of the settings table.
func StoreSettings[Q postgres.Queryer](
	ctx context.Context, q Q, mutableSettings []byte,
) error {
	res := q.GORM(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"config"}),
	}).Create(&gSettings{ID: 1, Config: string(mutableSettings)})
	if err := res.Error; err != nil {
		return fmt.Errorf("upserting settings: %w", err)
	}
	return nil
}

// LoadSettings queries the serialized mutable settings.
func LoadSettings[Q postgres.Queryer](ctx context.Context, q Q) ([]byte, error) {
	var gs []gSettings
	res := q.GORM(ctx).Where("id=?", 1).Find(&gs)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(gs) == 0 {
		return nil, nil
	}
	return []byte(gs[0].Config), nil
}

// InitProdSchema inserts the mandatory rows. The settings row is the
// only mandatory row and it is stored by PersistSettings.
func (i *Initializer) InitProdSchema(ctx context.Context) error {
	return nil
}

// InitDevSchema inserts an owner and a driver user (both having the
// DevPassword password) and two parkings in Paris.
func (i *Initializer) InitDevSchema(ctx context.Context) error {
	now := time.Now()
	hash, err := i.hasher.Hash(DevPassword, "", devPasswordIters)
	if err != nil {
		return fmt.Errorf("hashing dev password: %w", err)
	}
	owner := &model.User{
		ID:           uuid.New(),
		Email:        DevOwnerEmail,
		Name:         "Sample Owner",
		PasswordHash: hash,
		Role:         model.RoleOwner,
		CreatedAt:    now,
	}
	driver := &model.User{
		ID:           uuid.New(),
		Email:        DevDriverEmail,
		Name:         "Sample Driver",
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
	}
	for _, u := range []*model.User{owner, driver} {
		if err := usersrp.Create(ctx, i.tx, u); err != nil {
			return fmt.Errorf("creating %q user: %w", u.Email, err)
		}
	}
	weekdays := model.DailyHours{Open: 7 * 60, Close: 22 * 60}
	parkings := []struct {
		name, address string
		lat, lon      float64
		rate          int64
		spaces        int
		hours         model.OpeningHours
	}{
		{
			"Louvre", "1 Rue de Rivoli, Paris",
			48.8606, 2.3376, 350, 20, nil,
		},
		{
			"Bastille", "Place de la Bastille, Paris",
			48.8532, 2.3692, 250, 10, model.OpeningHours{
				time.Monday:    weekdays,
				time.Tuesday:   weekdays,
				time.Wednesday: weekdays,
				time.Thursday:  weekdays,
				time.Friday:    weekdays,
				time.Saturday:  weekdays,
			},
		},
	}
	for _, sp := range parkings {
		rate, err := model.NewMoney(sp.rate, i.currency)
		if err != nil {
			return fmt.Errorf("sample rate: %w", err)
		}
		p := &model.Parking{
			ID:             uuid.New(),
			OwnerID:        owner.ID,
			Name:           sp.name,
			Address:        sp.address,
			Coordinate:     model.Coordinate{Lat: sp.lat, Lon: sp.lon},
			HourlyRate:     rate,
			TotalSpaces:    sp.spaces,
			AvailableSpots: sp.spaces,
			OpeningHours:   sp.hours,
			CreatedAt:      now,
		}
		if err := parkingsrp.Create(ctx, i.tx, p); err != nil {
			return fmt.Errorf("creating %q parking: %w", p.Name, err)
		}
	}
	return nil
}
