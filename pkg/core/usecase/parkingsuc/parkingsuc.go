// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parkingsuc contains the parkings UseCase which lets owners
// register their parkings and lets drivers browse and search them.
package parkingsuc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// DefaultRadiusKm is the search radius when none is given.
const DefaultRadiusKm = 5.0

// MaxRadiusKm bounds the Nearby search radius.
const MaxRadiusKm = 100.0

// UseCase represents the parkings use case.
type UseCase struct {
	pool     repo.Pool
	users    repo.Users
	parkings repo.Parkings
	currency string

	now   func() time.Time
	newID func() uuid.UUID
}

// Option is a functional option for the parkings use case.
type Option func(uc *UseCase) error

// WithCurrency restricts hourly rates to the given currency.
func WithCurrency(currency string) Option {
	return func(uc *UseCase) error {
		if _, err := model.ZeroMoney(currency); err != nil {
			return fmt.Errorf("currency: %w", err)
		}
		if uc.currency != "" {
			return errors.New("currency is already configured")
		}
		uc.currency = currency
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

// WithIDGenerator replaces uuid.New for new parking identifiers.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(uc *UseCase) error {
		if newID == nil {
			return errors.New("nil id generator")
		}
		uc.newID = newID
		return nil
	}
}

// New instantiates a parkings use case.
func New(
	p repo.Pool,
	users repo.Users,
	parkings repo.Parkings,
	opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{
		pool:     p,
		users:    users,
		parkings: parkings,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = uuid.New
	}
	return uc, nil
}

// Register stores p as a new parking of the ownerID user. The ID,
// OwnerID, CreatedAt, and AvailableSpots fields of p are overwritten
// and all of its spaces are initially available.
// Only users with the owner role may register parkings.
func (uc *UseCase) Register(
	ctx context.Context, ownerID uuid.UUID, p *model.Parking,
) (*model.Parking, error) {
	np := *p
	np.ID = uc.newID()
	np.OwnerID = ownerID
	np.AvailableSpots = np.TotalSpaces
	np.CreatedAt = uc.now()
	if err := np.Validate(); err != nil {
		return nil, cerr.InvalidArgument(err)
	}
	if uc.currency != "" && np.HourlyRate.Currency() != uc.currency {
		return nil, cerr.InvalidArgument(fmt.Errorf(
			"hourly rate currency must be %s", uc.currency,
		))
	}
	err := repo.InTx(ctx, uc.pool, func(ctx context.Context, tx repo.Tx) error {
		u, err := uc.users.Tx(tx).Get(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("finding owner %v: %w", ownerID, err)
		}
		if u.Role != model.RoleOwner {
			return cerr.Authorization(fmt.Errorf(
				"user %v is not a parking owner", ownerID,
			))
		}
		return uc.parkings.Tx(tx).Create(ctx, &np)
	})
	if err != nil {
		return nil, err
	}
	return &np, nil
}

// Get finds a parking by its ID.
func (uc *UseCase) Get(
	ctx context.Context, pid uuid.UUID,
) (p *model.Parking, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		p, err = uc.parkings.Conn(c).Get(ctx, pid)
		return err
	})
	if err != nil {
		p = nil
	}
	return
}

// List returns all parkings.
func (uc *UseCase) List(
	ctx context.Context,
) (pp []model.Parking, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		pp, err = uc.parkings.Conn(c).List(ctx)
		return err
	})
	if err != nil {
		pp = nil
	}
	return
}

// NearbyParking is a parking with its distance from a search point.
type NearbyParking struct {
	model.Parking
	DistanceKm float64 `json:"distance_km"`
}

// Nearby lists the parkings within radiusKm kilometers of c, nearest
// first. A zero radiusKm means DefaultRadiusKm.
func (uc *UseCase) Nearby(
	ctx context.Context, c model.Coordinate, radiusKm float64,
) ([]NearbyParking, error) {
	if err := c.Validate(); err != nil {
		return nil, cerr.InvalidArgument(err)
	}
	if radiusKm == 0 {
		radiusKm = DefaultRadiusKm
	}
	if radiusKm < 0 || radiusKm > MaxRadiusKm || math.IsNaN(radiusKm) {
		return nil, cerr.InvalidArgument(fmt.Errorf(
			"radius (%v km) is out of (0, %v] range",
			radiusKm, MaxRadiusKm,
		))
	}
	pp, err := uc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing parkings: %w", err)
	}
	near := make([]NearbyParking, 0, len(pp))
	for _, p := range pp {
		if d := c.DistanceTo(p.Coordinate); d <= radiusKm {
			near = append(near, NearbyParking{Parking: p, DistanceKm: d})
		}
	}
	slices.SortStableFunc(near, func(a, b NearbyParking) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		default:
			return 0
		}
	})
	return near, nil
}
