// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"
	"log/slog"

	"github.com/momeni/clean-parking/pkg/core/log"
	"github.com/momeni/clean-parking/pkg/core/usecase/migrationuc"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the pending schema migrations",
	Long: `Apply the pending schema migrations on the cpwebX schema of
the configured database, using the normal database role. Migrations are
embedded into the cpweb binary and are applied in order. The mutable
settings of the config file are stored only if the schema was empty,
so the settings which were updated by the parking owners are kept.`,
	RunE: migrate,
	Args: cobra.NoArgs,
}

func migrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	from, to, err := migrationuc.NewMigrateDB(c).Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrating DB: %w", err)
	}
	log.Info(
		ctx, "database is migrated",
		slog.Int64("from", from), slog.Int64("to", to),
	)
	return nil
}

func init() {
	dbCmd.AddCommand(migrateCmd)
}
