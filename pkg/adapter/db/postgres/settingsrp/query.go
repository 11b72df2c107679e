// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settingsrp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/migration"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
)

// Fetch queries the mutable settings from the settings repository,
// deserializes them, merges them into a clone of the baseConfs
// representing the configuration file and environment variables state,
// and returns the fresh configuration instance as an appuc.Builder
// interface in addition to its visible settings (as an instance of the
// version-independent model.VisibleSettings struct).
// Stored settings which are out of the base confs boundary values are
// clamped to their nearest boundary value and logged as a warning.
// If no settings are stored, the base confs are used as they are.
func Fetch[Q postgres.Queryer](
	ctx context.Context, q Q, baseConfs *cfg1.Config,
) (
	appuc.Builder, *model.VisibleSettings, *model.Settings, *model.Settings,
	error,
) {
	b, err := migration.LoadSettings(ctx, q)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf(
			"migration.LoadSettings: %w", err,
		)
	}
	confs := baseConfs.Clone()
	if b != nil {
		var ser cfg1.Serializable
		if err = json.Unmarshal(b, &ser); err != nil {
			return nil, nil, nil, nil, fmt.Errorf(
				"deserializing json: %w", err,
			)
		}
		if err = confs.Mutate(ser); err != nil {
			return nil, nil, nil, nil, fmt.Errorf(
				"confs.Mutate(%#v): %w", ser, err,
			)
		}
		confs.Usecases.Clamp(ctx)
	}
	minb, maxb := confs.Bounds()
	return confs, confs.Visible().Model(), minb, maxb, nil
}

// Update converts the version-independent mutable model.Settings
// instance into a version-dependent serializable settings instance
// for the last supported version, serializes them as JSON, and
// then stores them in the settings repository. Given mutable settings
// are also used in order to update a clone of the baseConfs instance.
// Updated configuration settings will be returned as an instance of
// the appuc.Builder interface in addition to its visible settings.
// Settings which are out of the boundary values are rejected with an
// invalid argument error and nothing is stored then.
func Update(
	ctx context.Context,
	tx *postgres.Tx,
	baseConfs *cfg1.Config,
	s *model.Settings,
) (
	appuc.Builder, *model.VisibleSettings, *model.Settings, *model.Settings,
	error,
) {
	ser := cfg1.SerializableOf(s)
	confs := baseConfs.Clone()
	if err := confs.Mutate(ser); err != nil {
		return nil, nil, nil, nil, fmt.Errorf(
			"confs.Mutate(%#v): %w", ser, err,
		)
	}
	if err := confs.Usecases.ValidateAndNormalize(); err != nil {
		return nil, nil, nil, nil, cerr.InvalidArgument(err)
	}
	b, err := json.Marshal(ser)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("serializing json: %w", err)
	}
	if err = migration.StoreSettings(ctx, tx, b); err != nil {
		return nil, nil, nil, nil, fmt.Errorf(
			"persisting settings: %w", err,
		)
	}
	minb, maxb := confs.Bounds()
	return confs, confs.Visible().Model(), minb, maxb, nil
}
