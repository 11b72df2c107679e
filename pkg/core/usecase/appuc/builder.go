// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/usecase/availuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/parkingsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/sessionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/subscriptionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/usersuc"
)

// Builder interface represents the expectations from the application
// use case builders. All use cases which can be instantiated by a
// configuration struct have one NewX method here which takes database
// connection pool and their dependencies. The configuration struct
// must implement this interface, take repository packages and create
// use case objects based on its contained settings (e.g., the pricing
// quarter or the reservations duration bounds).
// When new settings are loaded from a database, they may override some
// of the configuration settings, hence, produce a new Builder instance.
type Builder interface {
	// NewAppUseCase creates a new application use case. This use case
	// needs a SettingsRepo in order to fetch or update mutable settings
	// from the database. It also needs to take all dependencies which
	// may be required by other use cases because it needs to pass them
	// to the Builder instance again after reloading or updating
	// settings, changing the mutable settings in the database and
	// memory.
	//
	// When settings are updated and a new Builder instance is obtained,
	// it can be asked to create new use case objects. The fields of
	// the new application UseCase can be copied into the previous
	// UseCase instance, updating it in-place, while other use case
	// objects (e.g., reservationsuc.UseCase) can replace their old
	// instance as an opaque object. This replacement strategy requires
	// the resources packages to ask this application UseCase for the
	// actual use case objects, right before using them, so they can be
	// fetched or updated atomically as managed by the application
	// UseCase.
	NewAppUseCase(p repo.Pool, s SettingsRepo, d Deps) (*UseCase, error)

	NewUsersUseCase(p repo.Pool, d Deps) (*usersuc.UseCase, error)

	NewParkingsUseCase(p repo.Pool, r Repos) (*parkingsuc.UseCase, error)

	NewAvailabilityUseCase(p repo.Pool, r Repos) (*availuc.UseCase, error)

	NewReservationsUseCase(
		p repo.Pool, d Deps,
	) (*reservationsuc.UseCase, error)

	NewSessionsUseCase(p repo.Pool, d Deps) (*sessionsuc.UseCase, error)

	NewSubscriptionsUseCase(
		p repo.Pool, d Deps,
	) (*subscriptionsuc.UseCase, error)
}
