// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// SettingsPersister persists the serialized mutable settings.
type SettingsPersister interface {
	// PersistSettings stores the mutableSettings byte slice as the
	// serialized form of the mutable configuration settings, using
	// the transaction which is held by this interface. The persistence
	// applies whenever the caller commits its transaction.
	PersistSettings(ctx context.Context, mutableSettings []byte) error
}

// SchemaInitializer fills a freshly migrated schema with its initial
// data rows and persists the mutable settings alongside them.
type SchemaInitializer interface {
	SettingsPersister

	// InitDevSchema inserts the development suitable sample data,
	// i.e., a few users and parkings.
	InitDevSchema(ctx context.Context) error

	// InitProdSchema inserts the production suitable data which
	// is limited to the mandatory rows.
	InitProdSchema(ctx context.Context) error
}

// SchemaMigrator applies the pending schema migrations, creating or
// altering tables, so the schema reaches the latest known version.
type SchemaMigrator interface {
	// Migrate returns the schema version before and after migration.
	Migrate(ctx context.Context) (from, to int64, err error)
}

// Schema is the schema management repository. It is used with the
// admin role in order to (re)create the application schema and its
// normal role before the migrations may run.
type Schema interface {
	Conn(Conn) SchemaConnQueryer
	Tx(Tx) SchemaTxQueryer
}

// SchemaConnQueryer contains schema queries which may run with a
// connection.
type SchemaConnQueryer interface {
	SchemaQueryer
}

// SchemaTxQueryer contains schema queries which need a transaction.
type SchemaTxQueryer interface {
	SchemaQueryer

	// ChangePasswords updates the passwords of the given roles. The
	// roles and passwords slices must have the same length. Passwords
	// are hashed before being sent to the DBMS, so plaintext passwords
	// do not appear in the DDL queries (or their logs).
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error
}

// SchemaQueryer contains schema queries which may run either with
// a connection or an ongoing transaction.
type SchemaQueryer interface {
	DropIfExists(ctx context.Context, schema string) error
	CreateSchema(ctx context.Context, schema string) error
	CreateRoleIfNotExists(ctx context.Context, role Role) error
	GrantPrivileges(ctx context.Context, schema string, role Role) error
	SetSearchPath(ctx context.Context, schema string, role Role) error
}
