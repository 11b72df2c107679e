// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migration_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/clean-parking/internal/test/dbcontainer"
	"github.com/momeni/clean-parking/internal/test/schema"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/migration"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/parkingsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/reservationsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/clean-parking/pkg/adapter/hash/scram"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/stretchr/testify/require"
)

func TestMigrateAndInitDev(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	r := require.New(t)

	m, err := migration.NewMigrator(pool)
	r.NoError(err)
	from, to, err := m.Migrate(ctx)
	r.NoError(err, "migrating an empty schema")
	r.Equal(int64(0), from)
	r.Equal(int64(1), to)
	from, to, err = m.Migrate(ctx)
	r.NoError(err, "migrating an up to date schema")
	r.Equal(int64(1), from)
	r.Equal(int64(1), to)
	v, err := migration.SemVer(to)
	r.NoError(err)
	r.Equal(model.SemVer{1, 0, 0}, v)

	err = pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			ini := migration.NewInitializer(tx, scram.SHA256(), "EUR")
			if err := ini.PersistSettings(ctx, []byte(`{}`)); err != nil {
				return err
			}
			return ini.InitDevSchema(ctx)
		})
	})
	r.NoError(err, "initializing dev data")

	err = pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		sv := schema.NewVerifier(c)
		sv.VerifySchema(ctx, t)
		sv.VerifyDevData(ctx, t)
		return nil
	})
	r.NoError(err)

	var pid uuid.UUID
	err = pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, rtx repo.Tx) error {
			tx := reservationsrp.New().Tx(rtx)
			pp, err := parkingsrp.New().Tx(rtx).List(ctx)
			r.NoError(err)
			r.NotEmpty(pp)
			pid = pp[0].ID
			u, err := usersrp.New().Tx(rtx).GetByEmail(
				ctx, migration.DevDriverEmail,
			)
			r.NoError(err)
			start := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
			res := &model.Reservation{
				ID:          uuid.New(),
				UserID:      u.ID,
				ParkingID:   pid,
				StartTime:   start,
				EndTime:     start.Add(time.Hour),
				TotalAmount: model.MustMoney(350, "EUR"),
				Status:      model.ReservationConfirmed,
				CreatedAt:   start.Add(-time.Hour),
			}
			r.NoError(tx.Create(ctx, res))

			n, err := tx.CountOverlapping(
				ctx, pid, start.Add(30*time.Minute),
				start.Add(90*time.Minute), nil,
			)
			r.NoError(err)
			r.Equal(1, n)
			n, err = tx.CountOverlapping(
				ctx, pid, start.Add(time.Hour), start.Add(2*time.Hour), nil,
			)
			r.NoError(err)
			r.Equal(0, n, "windows which touch do not overlap")
			n, err = tx.CountOverlapping(
				ctx, pid, start, start.Add(time.Hour), &res.ID,
			)
			r.NoError(err)
			r.Equal(0, n, "excluded reservation is not counted")

			elapsed, err := tx.ListElapsed(ctx, start.Add(time.Hour))
			r.NoError(err)
			r.Len(elapsed, 1)
			r.NoError(tx.SetStatus(ctx, res.ID, model.ReservationCancelled))
			n, err = tx.CountCovering(ctx, pid, start)
			r.NoError(err)
			r.Equal(0, n, "cancelled reservations hold no space")
			return nil
		})
	})
	r.NoError(err)
}
