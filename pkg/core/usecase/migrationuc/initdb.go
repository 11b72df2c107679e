// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/momeni/clean-parking/pkg/core/log"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// InitDBUseCase represents the database initialization use case. It may
// be used to initialize database with development or production
// suitable data as asked by the InitDev and InitProd methods.
type InitDBUseCase struct {
	settings   Settings    // target settings
	schemaRepo repo.Schema // schema management repo
}

// NewInitDB creates an InitDBUseCase instance, using the `ss` settings
// in order to find the target database connection information.
// The `repo.Schema` repo will be taken from the `ss` in order to be
// used for (re)creating an empty schema, creating the normal role,
// granting it privileges on the empty schema, and renewing the
// passwords of admin and normal roles.
func NewInitDB(ss Settings) *InitDBUseCase {
	return &InitDBUseCase{
		settings:   ss,
		schemaRepo: ss.NewSchemaRepo(),
	}
}

// InitProd creates the cpwebN schema (if N is the relevant major
// version) using the admin role. An existing schema is never dropped
// by InitProd, so it fails if the schema exists already.
// It also creates the normal role (if it does not exist), grants
// privileges on the created schema to normal role so it can create
// tables, and renews passwords of both admin and normal roles. These
// operations will be performed using the admin role in a single
// transaction and coordinated with password files so they can be
// repeated in case of an abrupt failure.
// Thereafter, it connects to the target database using the normal role,
// runs the schema migrations, and persists the mutable settings (in a
// second transaction) alongside the production suitable data.
func (iduc *InitDBUseCase) InitProd(ctx context.Context) error {
	return iduc.initDB(
		ctx,
		false,
		func(ctx context.Context, si repo.SchemaInitializer) error {
			return si.InitProdSchema(ctx)
		},
	)
}

// InitDev drops the cpwebN schema (if N is the relevant major version)
// and recreates it, similar to InitProd. After running the schema
// migrations, it fills the tables with the development suitable data,
// i.e., a few sample users and parkings.
func (iduc *InitDBUseCase) InitDev(ctx context.Context) error {
	return iduc.initDB(
		ctx,
		true,
		func(ctx context.Context, si repo.SchemaInitializer) error {
			return si.InitDevSchema(ctx)
		},
	)
}

func (iduc *InitDBUseCase) initDB(
	ctx context.Context,
	drop bool,
	dbi func(ctx context.Context, si repo.SchemaInitializer) error,
) error {
	if err := iduc.createSchema(ctx, drop); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	p, err := iduc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	m, err := iduc.settings.SchemaMigrator(p)
	if err != nil {
		return fmt.Errorf("creating SchemaMigrator: %w", err)
	}
	_, to, err := m.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	log.Info(ctx, "schema is migrated", slog.Int64("version", to))
	err = repo.InTx(ctx, p, func(ctx context.Context, tx repo.Tx) error {
		ms, err := iduc.settings.Serialize()
		if err != nil {
			return fmt.Errorf("obtaining mutable settings: %w", err)
		}
		si, err := iduc.settings.SchemaInitializer(tx)
		if err != nil {
			return fmt.Errorf("creating SchemaInitializer: %w", err)
		}
		if err := dbi(ctx, si); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
		err = si.PersistSettings(ctx, ms)
		if err != nil {
			return fmt.Errorf("saving mutable settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("normal connection: %w", err)
	}
	return nil
}

func (iduc *InitDBUseCase) createSchema(
	ctx context.Context, drop bool,
) error {
	p, err := iduc.settings.ConnectionPool(ctx, repo.AdminRole)
	if err != nil {
		return fmt.Errorf("creating DB pool for admin: %w", err)
	}
	defer p.Close()
	var finalizer func() error
	err = repo.InTx(ctx, p, func(ctx context.Context, tx repo.Tx) error {
		q := iduc.schemaRepo.Tx(tx)
		v := iduc.settings.SchemaVersion()
		sn := SchemaName(v[0])
		if drop {
			if err := q.DropIfExists(ctx, sn); err != nil {
				return fmt.Errorf("dropping %q: %w", sn, err)
			}
		}
		if err := q.CreateSchema(ctx, sn); err != nil {
			return fmt.Errorf("creating %q: %w", sn, err)
		}
		if err := q.CreateRoleIfNotExists(
			ctx, repo.NormalRole,
		); err != nil {
			return fmt.Errorf("creating normal role: %w", err)
		}
		if err := q.GrantPrivileges(
			ctx, sn, repo.NormalRole,
		); err != nil {
			return fmt.Errorf("granting normal role privs: %w", err)
		}
		if err := q.SetSearchPath(
			ctx, sn, repo.NormalRole,
		); err != nil {
			return fmt.Errorf(
				"setting search_path of normal role to %q: %w",
				sn, err,
			)
		}
		finalizer, err = iduc.settings.RenewPasswords(
			ctx, q.ChangePasswords, repo.AdminRole, repo.NormalRole,
		)
		if err != nil {
			return fmt.Errorf("RenewPasswords: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("admin connection: %w", err)
	}
	if err := finalizer(); err != nil {
		return fmt.Errorf("finalizing passwords renewal: %w", err)
	}
	return nil
}
