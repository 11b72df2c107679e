// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema provides database schema verification helpers for the
// integration-level test suites. The schema itself is verified by
// looking up its tables and columns in the information_schema views,
// while the schema contents are verified only when the expected rows
// can be guessed unambiguously, e.g., right after an initialization.
package schema

import (
	"context"
	"testing"

	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/migration"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Columns lists the expected columns of each table of the latest
// schema version. Extra columns are tolerated.
var Columns = map[string][]string{
	"users": {"id", "email", "name", "password_hash", "role"},
	"parkings": {
		"id", "owner_id", "name", "lat", "lon", "hourly_rate_cents",
		"currency", "total_spaces", "available_spots", "opening_hours",
	},
	"reservations": {
		"id", "user_id", "parking_id", "start_time", "end_time",
		"total_cents", "status",
	},
	"parking_sessions": {
		"id", "user_id", "parking_id", "reservation_id", "start_time",
		"end_time", "total_cents", "status",
	},
	"subscriptions": {
		"id", "user_id", "parking_id", "weekly_slots", "start_date",
		"end_date", "monthly_cents", "status",
	},
	"settings": {"id", "config"},
}

// Verifier wraps a database connection whose search_path points to
// the verified schema.
type Verifier struct {
	c repo.Conn
}

// NewVerifier instantiates a Verifier for the c connection.
func NewVerifier(c repo.Conn) *Verifier {
	return &Verifier{c: c}
}

// VerifySchema ensures that all tables of the Columns map exist in the
// current schema and have their expected columns.
func (v *Verifier) VerifySchema(ctx context.Context, t *testing.T) {
	for table, cols := range Columns {
		rows, err := v.c.Query(ctx, `SELECT column_name
FROM information_schema.columns
WHERE table_schema=current_schema() AND table_name=$1`, table)
		require.NoError(t, err, "querying columns of %q", table)
		found := make(map[string]bool)
		for rows.Next() {
			var col string
			require.NoError(t, rows.Scan(&col), "scanning column name")
			found[col] = true
		}
		require.NoError(t, rows.Err(), "iterating columns of %q", table)
		rows.Close()
		for _, col := range cols {
			assert.True(t, found[col], "missing %s.%s column", table, col)
		}
	}
}

// VerifyDevData checks for presence of the development sample users
// and parkings. Presence of extra rows is acceptable.
func (v *Verifier) VerifyDevData(ctx context.Context, t *testing.T) {
	for _, email := range []string{
		migration.DevOwnerEmail, migration.DevDriverEmail,
	} {
		assert.Equal(
			t, 1, v.count(ctx, t, "users WHERE email=$1", email),
			"sample user %q", email,
		)
	}
	assert.GreaterOrEqual(t, v.count(ctx, t, "parkings"), 2)
	v.VerifyProdData(ctx, t)
}

// VerifyProdData checks for presence of the mandatory settings row.
func (v *Verifier) VerifyProdData(ctx context.Context, t *testing.T) {
	assert.Equal(t, 1, v.count(ctx, t, "settings WHERE id=1"))
}

func (v *Verifier) count(
	ctx context.Context, t *testing.T, from string, args ...any,
) int {
	rows, err := v.c.Query(ctx, "SELECT count(*) FROM "+from, args...)
	require.NoError(t, err, "counting %s", from)
	defer rows.Close()
	require.True(t, rows.Next(), "count of %s has no rows", from)
	var n int
	require.NoError(t, rows.Scan(&n))
	return n
}
