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

// MigrateDBUseCase represents the database migration use case. It
// applies the pending schema migrations on an initialized database.
type MigrateDBUseCase struct {
	settings Settings
}

// NewMigrateDB creates a MigrateDBUseCase for the database which its
// connection information are kept by the `ss` settings.
func NewMigrateDB(ss Settings) *MigrateDBUseCase {
	return &MigrateDBUseCase{settings: ss}
}

// Migrate connects to the database using the normal role and applies
// all pending migrations. It returns the schema versions before and
// after the migration. The mutable settings which are stored in the
// database are kept intact, unless the settings row was missing (i.e.,
// the schema was empty) and so the configuration file settings are
// persisted in its place.
func (mduc *MigrateDBUseCase) Migrate(
	ctx context.Context,
) (from, to int64, err error) {
	p, err := mduc.settings.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return 0, 0, fmt.Errorf("creating DB pool for normal role: %w", err)
	}
	defer p.Close()
	m, err := mduc.settings.SchemaMigrator(p)
	if err != nil {
		return 0, 0, fmt.Errorf("creating SchemaMigrator: %w", err)
	}
	from, to, err = m.Migrate(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("migrating schema: %w", err)
	}
	log.Info(
		ctx, "schema is migrated",
		slog.Int64("from", from), slog.Int64("to", to),
	)
	if from != 0 {
		return from, to, nil
	}
	err = repo.InTx(ctx, p, func(ctx context.Context, tx repo.Tx) error {
		ms, err := mduc.settings.Serialize()
		if err != nil {
			return fmt.Errorf("obtaining mutable settings: %w", err)
		}
		si, err := mduc.settings.SchemaInitializer(tx)
		if err != nil {
			return fmt.Errorf("creating SchemaInitializer: %w", err)
		}
		if err := si.PersistSettings(ctx, ms); err != nil {
			return fmt.Errorf("saving mutable settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("persisting initial settings: %w", err)
	}
	return from, to, nil
}
