// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/clean-parking/pkg/core/usecase/migrationuc"
	"github.com/spf13/cobra"
)

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents for development",
	Long: `Initialize database contents for development.
The cpwebX schema (for the X major version of the configured database
schema version) is dropped if it exists and created again, the tables
are created by the schema migrations, and the mutable settings of the
config file are stored. The config file itself is not changed.
` + credsRenewalMessage,
	RunE: initDB((*migrationuc.InitDBUseCase).InitDev, "dev"),
	Args: cobra.NoArgs,
}

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents for production",
	Long: `Initialize database contents for production.
The cpwebX schema (for the X major version of the configured database
schema version) must not exist. It is created, the tables are created
by the schema migrations, and the mutable settings of the config file
are stored. An existing schema is never modified and causes an error.
` + credsRenewalMessage,
	RunE: initDB((*migrationuc.InitDBUseCase).InitProd, "prod"),
	Args: cobra.NoArgs,
}

func initDB(
	action func(*migrationuc.InitDBUseCase, context.Context) error,
	env string,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		muc := migrationuc.NewInitDB(c)
		if err = action(muc, cmd.Context()); err != nil {
			return fmt.Errorf("initializing DB for %s: %w", env, err)
		}
		return nil
	}
}

func init() {
	dbCmd.AddCommand(initDevCmd, initProdCmd)
}
