// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"

	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/routes"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Complete the elapsed reservations once",
	Long: `Complete the confirmed reservations which have ended while
nobody has checked in by them, releasing their parking spaces. The
server runs this action periodically, so this command is useful when
the server is stopped or for running it from a cron job.`,
	RunE: sweep,
	Args: cobra.NoArgs,
}

func sweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	app, _, err := routes.NewAppUseCase(ctx, p, c)
	if err != nil {
		return err
	}
	n, err := app.ReservationsUseCase().Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweeping: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d reservations are completed\n", n)
	return nil
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
