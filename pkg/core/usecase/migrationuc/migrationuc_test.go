// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package migrationuc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/usecase/migrationuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the names of the performed operations, so their
// order can be asserted.
type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

type fakeSettings struct {
	*recorder
	store       *memrepo.Store
	from, to    int64
	migrateErr  error
	initErr     error
	createErr   error
	finalized   bool
	persisted   []byte
	passwordsOf []repo.Role
}

func (fs *fakeSettings) ConnectionPool(
	_ context.Context, r repo.Role,
) (repo.Pool, error) {
	fs.add("pool %s", r)
	return fs.store.Pool(), nil
}

func (fs *fakeSettings) NewSchemaRepo() repo.Schema {
	return fakeSchema{fs}
}

func (fs *fakeSettings) SchemaMigrator(
	repo.Pool,
) (repo.SchemaMigrator, error) {
	return fakeMigrator{fs}, nil
}

func (fs *fakeSettings) SchemaInitializer(
	repo.Tx,
) (repo.SchemaInitializer, error) {
	return fakeInitializer{fs}, nil
}

func (fs *fakeSettings) RenewPasswords(
	ctx context.Context,
	change func(
		ctx context.Context, roles []repo.Role, passwords []string,
	) error,
	roles ...repo.Role,
) (func() error, error) {
	passwords := make([]string, len(roles))
	for i := range roles {
		passwords[i] = fmt.Sprintf("secret-%d", i)
	}
	if err := change(ctx, roles, passwords); err != nil {
		return nil, err
	}
	fs.passwordsOf = roles
	return func() error {
		fs.finalized = true
		return nil
	}, nil
}

func (fs *fakeSettings) SchemaVersion() model.SemVer {
	return model.SemVer{1, 0, 0}
}

func (fs *fakeSettings) Serialize() ([]byte, error) {
	return []byte(`{"version":"1.0.0"}`), nil
}

type fakeSchema struct {
	fs *fakeSettings
}

func (s fakeSchema) Conn(repo.Conn) repo.SchemaConnQueryer {
	return fakeSchemaQueryer(s)
}

func (s fakeSchema) Tx(repo.Tx) repo.SchemaTxQueryer {
	return fakeSchemaQueryer(s)
}

type fakeSchemaQueryer struct {
	fs *fakeSettings
}

func (q fakeSchemaQueryer) DropIfExists(_ context.Context, s string) error {
	q.fs.add("drop %s", s)
	return nil
}

func (q fakeSchemaQueryer) CreateSchema(_ context.Context, s string) error {
	q.fs.add("create %s", s)
	return q.fs.createErr
}

func (q fakeSchemaQueryer) CreateRoleIfNotExists(
	_ context.Context, r repo.Role,
) error {
	q.fs.add("role %s", r)
	return nil
}

func (q fakeSchemaQueryer) GrantPrivileges(
	_ context.Context, s string, r repo.Role,
) error {
	q.fs.add("grant %s %s", s, r)
	return nil
}

func (q fakeSchemaQueryer) SetSearchPath(
	_ context.Context, s string, r repo.Role,
) error {
	q.fs.add("search_path %s %s", s, r)
	return nil
}

func (q fakeSchemaQueryer) ChangePasswords(
	_ context.Context, roles []repo.Role, passwords []string,
) error {
	if len(roles) != len(passwords) {
		return errors.New("mismatching roles and passwords")
	}
	q.fs.add("passwords %v", roles)
	return nil
}

type fakeMigrator struct {
	fs *fakeSettings
}

func (m fakeMigrator) Migrate(context.Context) (int64, int64, error) {
	m.fs.add("migrate")
	return m.fs.from, m.fs.to, m.fs.migrateErr
}

type fakeInitializer struct {
	fs *fakeSettings
}

func (i fakeInitializer) PersistSettings(
	_ context.Context, ms []byte,
) error {
	i.fs.add("persist")
	i.fs.persisted = ms
	return nil
}

func (i fakeInitializer) InitDevSchema(context.Context) error {
	i.fs.add("init dev")
	return i.fs.initErr
}

func (i fakeInitializer) InitProdSchema(context.Context) error {
	i.fs.add("init prod")
	return i.fs.initErr
}

func newFakeSettings(from, to int64) *fakeSettings {
	return &fakeSettings{
		recorder: &recorder{},
		store:    memrepo.New(),
		from:     from,
		to:       to,
	}
}

func TestInitDevDropsAndRecreatesSchema(t *testing.T) {
	r := require.New(t)
	fs := newFakeSettings(0, 1)
	err := migrationuc.NewInitDB(fs).InitDev(context.Background())
	r.NoError(err)
	r.Equal([]string{
		"pool admin",
		"drop cpweb1",
		"create cpweb1",
		"role cpweb",
		"grant cpweb1 cpweb",
		"search_path cpweb1 cpweb",
		"passwords [admin cpweb]",
		"pool cpweb",
		"migrate",
		"init dev",
		"persist",
	}, fs.calls)
	r.True(fs.finalized, "passwords renewal must be finalized")
	r.Equal([]repo.Role{repo.AdminRole, repo.NormalRole}, fs.passwordsOf)
	r.JSONEq(`{"version":"1.0.0"}`, string(fs.persisted))
	r.Equal(2, fs.store.Commits)
}

func TestInitProdKeepsExistingSchema(t *testing.T) {
	r := require.New(t)
	fs := newFakeSettings(0, 1)
	err := migrationuc.NewInitDB(fs).InitProd(context.Background())
	r.NoError(err)
	r.NotContains(fs.calls, "drop cpweb1")
	r.Contains(fs.calls, "init prod")
	r.NotContains(fs.calls, "init dev")

	fs = newFakeSettings(0, 1)
	fs.createErr = errors.New("schema \"cpweb1\" already exists")
	err = migrationuc.NewInitDB(fs).InitProd(context.Background())
	r.Error(err)
	r.False(fs.finalized, "failed renewal must not be finalized")
	r.NotContains(fs.calls, "migrate")
	r.Equal(1, fs.store.Rollbacks)
}

func TestInitDBRollsBackFailedInitialization(t *testing.T) {
	fs := newFakeSettings(0, 1)
	fs.initErr = errors.New("boom")
	err := migrationuc.NewInitDB(fs).InitDev(context.Background())
	require.ErrorIs(t, err, fs.initErr)
	assert.NotContains(t, fs.calls, "persist")
	assert.Equal(t, 1, fs.store.Rollbacks)
}

func TestMigrateDB(t *testing.T) {
	cases := []struct {
		name     string
		from, to int64
		persist  bool
	}{
		{"empty schema", 0, 1, true},
		{"up to date schema", 1, 1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fs := newFakeSettings(c.from, c.to)
			from, to, err := migrationuc.NewMigrateDB(fs).Migrate(
				context.Background(),
			)
			require.NoError(t, err)
			assert.Equal(t, c.from, from)
			assert.Equal(t, c.to, to)
			if c.persist {
				assert.Equal(
					t, []string{"pool cpweb", "migrate", "persist"},
					fs.calls,
				)
			} else {
				assert.Equal(t, []string{"pool cpweb", "migrate"}, fs.calls)
			}
		})
	}
}

func TestMigrateDBReportsFailure(t *testing.T) {
	fs := newFakeSettings(0, 0)
	fs.migrateErr = errors.New("syntax error")
	_, _, err := migrationuc.NewMigrateDB(fs).Migrate(context.Background())
	require.ErrorIs(t, err, fs.migrateErr)
	assert.NotContains(t, fs.calls, "persist")
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "cpweb1", migrationuc.SchemaName(1))
	assert.True(t, migrationuc.AreVersionsCompatible(
		model.SemVer{1, 2, 0}, model.SemVer{1, 1, 5},
	))
	assert.False(t, migrationuc.AreVersionsCompatible(
		model.SemVer{1, 0, 0}, model.SemVer{1, 1, 0},
	))
	assert.False(t, migrationuc.AreVersionsCompatible(
		model.SemVer{2, 3, 0}, model.SemVer{1, 1, 0},
	))
}
