// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the cpweb
// parking reservation server. Commands are organized using the cobra
// library. The root command starts the web server itself (in addition
// to the elapsed reservations sweeper), the "sweep" sub-command runs
// a single sweep, and the "db" sub-command can be used for the
// database management actions. Three actions are supported. The
// init-dev and init-prod actions for initialization of the database
// and the migrate action for applying the pending schema migrations.
//
//	./cpweb [-c /path/of/config.yaml] [--listen :8080]  # start server
//	./cpweb sweep [-c /path/of/config.yaml]
//	./cpweb db init-dev [-c /path/of/config.yaml]
//	./cpweb db init-prod [-c /path/of/config.yaml]
//	./cpweb db migrate [-c /path/of/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/clean-parking/pkg/adapter/config"
	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/routes"
	"github.com/momeni/clean-parking/pkg/adapter/sweeper"
	"github.com/momeni/clean-parking/pkg/core/log"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/spf13/cobra"
)

var (
	cfgPath       string
	envPath       string
	logJSON       bool
	listenAddr    string
	sweepInterval time.Duration
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "cpweb",
	Short: "A parking reservation and session management server",
	Long: `A parking reservation and session management server which
lets drivers find parkings, reserve spaces in advance, subscribe to
weekly slots, and check in and out of parkings, while enforcing the
parking capacities, the time window conflicts, the quarter-hour based
pricing, and the overstay penalties. Parking owners may register their
parkings and tune the mutable pricing and reservation settings.
The REST APIs are served under /api/cpweb/v1 and the prometheus metrics
under /metrics. Confirmed reservations which have ended without a check
in are completed periodically, releasing their spaces.`,
	PersistentPreRun: func(*cobra.Command, []string) {
		setupLogger()
	},
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := c.ConnectionPool(ctx, repo.NormalRole)
	if err != nil {
		return fmt.Errorf("creating DB pool: %w", err)
	}
	defer p.Close()
	e := c.Gin.NewEngine(slog.Default())
	m := metrics.New()
	app, err := routes.Register(ctx, e, p, c, m)
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	sw, err := sweeper.New(func(ctx context.Context) (int, error) {
		return app.ReservationsUseCase().Sweep(ctx)
	}, sweepInterval, m)
	if err != nil {
		return fmt.Errorf("creating sweeper: %w", err)
	}
	go sw.Run(ctx)

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving REST APIs", slog.String("addr", listenAddr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err = <-errCh:
		return fmt.Errorf("running Gin engine: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down")
	sctx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err = <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running Gin engine: %w", err)
	}
	return nil
}

func loadConfig() (*cfg1.Config, error) {
	c, err := config.Load(cfgPath, envPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	return c, nil
}

func setupLogger() {
	var h slog.Handler
	if logJSON {
		h = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		h = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(h))
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "", "config file path")
	pf.StringVar(&envPath, "env-file", ".env", "dotenv file path")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	rootCmd.Flags().StringVar(
		&listenAddr, "listen", ":8080", "REST APIs listening address",
	)
	rootCmd.Flags().DurationVar(
		&sweepInterval, "sweep-interval", time.Minute,
		"period of completing the elapsed reservations",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}
