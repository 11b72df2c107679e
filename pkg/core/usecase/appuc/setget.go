// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package appuc

import (
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/availuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/parkingsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/sessionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/subscriptionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/usersuc"
)

// Settings returns a copy of visible settings which are currently in
// effect. The effective settings and use case objects which are built
// based on them (and other invisible settings) may be updated
// atomically, while they are exposed by a series of getter methods. At
// least one of Reload or UpdateSettings methods must be called before
// this (and other use case objects getter methods) may be called.
func (app *UseCase) Settings() model.VisibleSettings {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return *app.settings
}

// Bounds returns the minimum and maximum acceptable settings values.
// The returned structs are shared and must not be modified.
func (app *UseCase) Bounds() (minb, maxb *model.Settings) {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.minb, app.maxb
}

// updateAll atomically updates the visible settings and all other use
// case objects which are built based on these (visible and invisible)
// settings. This method minimizes the scope which needs to take a
// writing lock (after instantiating all relevant use case objects).
func (app *UseCase) updateAll(
	vs *model.VisibleSettings,
	minb, maxb *model.Settings,
	managed managedUseCases,
) {
	app.rwlock.Lock()
	defer app.rwlock.Unlock()
	app.settings = vs
	app.minb, app.maxb = minb, maxb
	app.managed = managed
}

// UsersUseCase returns the currently effective users use case.
func (app *UseCase) UsersUseCase() *usersuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.managed.users
}

// ParkingsUseCase returns the currently effective parkings use case.
func (app *UseCase) ParkingsUseCase() *parkingsuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.managed.parkings
}

// AvailabilityUseCase returns the currently effective availability
// use case.
func (app *UseCase) AvailabilityUseCase() *availuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.managed.availability
}

// ReservationsUseCase returns the currently effective reservations
// use case. At least one of Reload or UpdateSettings methods must be
// called before this (and other use case objects getter methods) may
// be called.
func (app *UseCase) ReservationsUseCase() *reservationsuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.managed.reservations
}

// SessionsUseCase returns the currently effective sessions use case.
func (app *UseCase) SessionsUseCase() *sessionsuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.managed.sessions
}

// SubscriptionsUseCase returns the currently effective subscriptions
// use case.
func (app *UseCase) SubscriptionsUseCase() *subscriptionsuc.UseCase {
	app.rwlock.RLock()
	defer app.rwlock.RUnlock()
	return app.managed.subscriptions
}
