// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package migrationuc provides the database migration use cases.
// It exposes two use cases, namely InitDBUseCase for initializing an
// empty database schema with initial sample data (for development or
// production environment) and MigrateDBUseCase for applying the
// pending schema migrations on an existing database.
// This package also exposes the Settings interface which represents
// the expectations from a configuration file representation type, so
// the use cases layer does not depend on the configuration format.
package migrationuc
