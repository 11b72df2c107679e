// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc

import (
	"context"
	"fmt"

	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
)

// Settings represents the database-related settings which should be
// provided by a configuration file. It allows a database connection
// pool to be established for an asked role using the ConnectionPool
// method, reports the database schema version, and may be used as a
// factory for the repo.Schema, repo.SchemaMigrator, and
// repo.SchemaInitializer repositories.
type Settings interface {
	// ConnectionPool creates a database connection pool using the
	// connection information which are kept in this Settings
	// instance. The `r` argument specifies the role name for the
	// created connection pool.
	//
	// Password values are kept in files in a specific password dir
	// and each non-empty and non-commented line of the passwords file
	// should conform with this format:
	//
	//	host:port:dbname:role:password
	//
	// A second temporary passwords file may hold the new passwords
	// during a RenewPasswords operation. If it was used for the
	// establishment of a connection pool, it will be moved to the main
	// passwords file before returning.
	ConnectionPool(ctx context.Context, r repo.Role) (repo.Pool, error)

	// NewSchemaRepo instantiates a fresh Schema repository which
	// hashes the role passwords as expected by the DBMS.
	NewSchemaRepo() repo.Schema

	// SchemaMigrator creates a repo.SchemaMigrator which runs the
	// pending migrations using the `p` connection pool.
	SchemaMigrator(p repo.Pool) (repo.SchemaMigrator, error)

	// SchemaInitializer creates a repo.SchemaInitializer instance
	// which wraps the given transaction argument and can be used to
	// initialize a migrated schema with development or production
	// suitable data. All insertions will be persisted only if the
	// `tx` could commit successfully.
	SchemaInitializer(tx repo.Tx) (repo.SchemaInitializer, error)

	// RenewPasswords generates new secure passwords for the given roles
	// and after recording them in a temporary file, will use the change
	// function in order to update the passwords of those roles in the
	// database too. The change function argument should perform the
	// update operation in a transaction which may or may not be
	// committed when RenewPasswords returns. After a successful
	// commitment, the returned finalizer must be called in order to
	// move the temporary passwords file over the main passwords file.
	RenewPasswords(
		ctx context.Context,
		change func(
			ctx context.Context,
			roles []repo.Role,
			passwords []string,
		) error,
		roles ...repo.Role,
	) (finalizer func() error, err error)

	// SchemaVersion returns the semantic version of the database schema
	// which its connection information are kept by this Settings.
	SchemaVersion() model.SemVer

	// Serialize serializes the mutable settings of this Settings
	// instance as a json document, so they may be persisted in the
	// database and override the configuration file later.
	Serialize() ([]byte, error)
}

// SchemaName returns the target database schema name for the given
// major version. It returns cpwebN for version N.
func SchemaName(major uint) string {
	return fmt.Sprintf("cpweb%d", major)
}

// AreVersionsCompatible returns true if the given semantic version
// numbers have the same major version and the minor version of v1 is
// not older than v2, so it can be said that v1 is backward-compatible
// with v2. That is, users of v2 may keep using v1 with no changes.
func AreVersionsCompatible(v1, v2 model.SemVer) bool {
	return v1[0] == v2[0] && v1[1] >= v2[1]
}
