// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres is the PostgreSQL database adapter. It provides
// the Pool, Conn, and Tx types which realize the repo.Pool, repo.Conn,
// and repo.Tx interfaces using GORM. The repository packages (e.g.,
// parkingsrp) unwrap these types and run their queries on the embedded
// *gorm.DB instances.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/clean-parking/pkg/core/model"
	"gorm.io/gorm"
)

// These constants represent the major, minor, and patch components of
// the current database schema semantic version. The migration package
// embeds one goose migration per minor version, so Minor is the number
// of migrations minus one.
const (
	Major = 1 // latest supported schema major version
	Minor = 0 // latest schema minor version in Major series
	Patch = 0 // latest schema patch version in Minor series
)

// Version is the latest supported database schema semantic version.
var Version = model.SemVer{Major, Minor, Patch}

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// IsUniqueViolation reports if err is (or wraps) a unique constraint
// violation error, as reported by the pgx driver or translated by GORM.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pge *pgconn.PgError
	return errors.As(err, &pge) && pge.Code == uniqueViolation
}
