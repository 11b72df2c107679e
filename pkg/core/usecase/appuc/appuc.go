// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package appuc contains the application UseCase which supports the
// settings fetching and updating requests, allows the application to be
// reloaded based on the mutable settings which are stored in the
// database, and maintains and provides visible settings and use case
// objects (with atomic replacement support) so they may be used by
// the resources packages.
package appuc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/scram"
	"github.com/momeni/clean-parking/pkg/core/usecase/availuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/parkingsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/reservationsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/sessionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/subscriptionsuc"
	"github.com/momeni/clean-parking/pkg/core/usecase/usersuc"
)

// Repos holds the repository instances which are required by the
// managed use cases.
type Repos struct {
	Users         repo.Users
	Parkings      repo.Parkings
	Reservations  repo.Reservations
	Sessions      repo.Sessions
	Subscriptions repo.Subscriptions
}

// Validate returns an error if any repository is missing.
func (r Repos) Validate() error {
	switch {
	case r.Users == nil:
		return errors.New("users repo is missing")
	case r.Parkings == nil:
		return errors.New("parkings repo is missing")
	case r.Reservations == nil:
		return errors.New("reservations repo is missing")
	case r.Sessions == nil:
		return errors.New("sessions repo is missing")
	case r.Subscriptions == nil:
		return errors.New("subscriptions repo is missing")
	}
	return nil
}

// Deps holds the non-settings dependencies of the managed use cases.
// They are kept by the application use case, so they may be passed
// to a fresh Builder whenever settings are reloaded or updated.
type Deps struct {
	Repos
	Hasher scram.PasswordHasher
	Issuer usersuc.TokenIssuer // optional, disables login if nil

	// Clock reports the current instant for the time dependent use
	// cases. It is optional and time.Now is used if it is nil.
	Clock func() time.Time
}

// UseCase represents an application use case. It holds a database
// connection pool, settings repository instance, and all repository
// instances which are required by other supported use cases.
// Therefore, it can pass these repository instances to a use case
// builder object (which is realized by the effective Config instance)
// in order to create supported use case objects (during a Reload or
// UpdateSettings operation).
type UseCase struct {
	pool         repo.Pool
	settingsRepo SettingsRepo
	deps         Deps

	// mutex is used by UpdateSettings and Reload methods so only one
	// go routine can try to update/fetch settings from the database
	// at any time. Even though such update/query attempts may proceed
	// concurrently as while as the UPDATE/SELECT queries are concerned,
	// but there is a risk that a go routine obtaining older data fail
	// to call updateAll sooner, hence, the older data may last longer.
	// The mutex resolves such concurrency issues without blocking other
	// use cases (which should be fetched using the following rwlock).
	mutex sync.Mutex

	// rwlock is locked for writing by updateAll whenever the new state
	// including the visible settings and use case objects are prepared
	// and should be published atomically, while it is locked by all
	// getter methods for reading in order to access the published state
	// (i.e., visible settings and use case objects).
	rwlock sync.RWMutex

	settings   *model.VisibleSettings // cached visible settings
	minb, maxb *model.Settings        // settings boundary values
	managed    managedUseCases
}

// managedUseCases holds the use case objects which are replaced
// atomically whenever settings change.
type managedUseCases struct {
	users         *usersuc.UseCase
	parkings      *parkingsuc.UseCase
	availability  *availuc.UseCase
	reservations  *reservationsuc.UseCase
	sessions      *sessionsuc.UseCase
	subscriptions *subscriptionsuc.UseCase
}

// New instantiates an application use case object. The Reload method
// of this object should be called at least once, so it can create
// other supported use case objects, before their corresponding getter
// methods are invoked (otherwise, they may return nil).
func New(
	p repo.Pool, s SettingsRepo, deps Deps, opts ...Option,
) (*UseCase, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deps: %w", err)
	}
	if deps.Hasher == nil {
		return nil, errors.New("invalid deps: password hasher is missing")
	}
	uc := &UseCase{
		pool:         p,
		settingsRepo: s,
		deps:         deps,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return uc, nil
}

// Option is a functional option for the application use case.
// No option is supported in this version.
type Option func(uc *UseCase) error
