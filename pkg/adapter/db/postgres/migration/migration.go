// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migration manages the database schema. The schema is
// described by goose SQL migration files which are embedded in the
// binary. Each file adds one minor version, so the schema version
// which is recorded by goose in the goose_db_version table is one more
// than the minor version of the postgres.Version semantic version.
//
// The Migrator type realizes repo.SchemaMigrator and the Initializer
// type realizes repo.SchemaInitializer.
package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrations returns the embedded migration files as a file system
// having the SQL files in its root directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(sqlFiles, "sql")
	if err != nil {
		panic(err) // the sql directory is embedded at compile time
	}
	return sub
}

// Migrator applies the pending embedded migrations.
type Migrator struct {
	provider *goose.Provider
}

// NewMigrator creates a Migrator which runs migrations on p pool.
// Tables are created in the first schema of the search_path of the
// p connection role.
func NewMigrator(p *postgres.Pool) (*Migrator, error) {
	db, err := p.SQL()
	if err != nil {
		return nil, fmt.Errorf("obtaining sql.DB: %w", err)
	}
	provider, err := goose.NewProvider(
		goose.DialectPostgres, db, Migrations(),
	)
	if err != nil {
		return nil, fmt.Errorf("goose.NewProvider: %w", err)
	}
	return &Migrator{provider: provider}, nil
}

// Migrate applies all pending migrations and returns the schema
// version before and after the migration. The embedded migrations are
// numbered consecutively, so the initial version is computed from the
// number of applied migrations.
func (m *Migrator) Migrate(ctx context.Context) (from, to int64, err error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("goose up: %w", err)
	}
	to, err = m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("querying schema version: %w", err)
	}
	return to - int64(len(results)), to, nil
}

// SemVer converts a goose schema version to a semantic version.
func SemVer(v int64) (model.SemVer, error) {
	if v < 1 {
		return model.SemVer{}, errors.New("schema is not initialized")
	}
	return model.SemVer{postgres.Major, uint(v - 1), 0}, nil
}
