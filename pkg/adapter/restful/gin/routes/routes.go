// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/auth/jwtauth"
	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/parkingsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/reservationsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/sessionsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/settingsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/subscriptionsrp"
	"github.com/momeni/clean-parking/pkg/adapter/db/postgres/usersrp"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/authmw"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/parkingsrs"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/reservationsrs"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/sessionsrs"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/settingsrs"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/subscriptionsrs"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/usersrs"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
)

// BasePath is the common prefix of all REST APIs.
const BasePath = "/api/cpweb/v1"

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. These connections/transactions will be
// passed to the repositories later in order to run relevant queries on
// them and accomplish those use cases. Each use case package is named
// like reservationsuc and each repository package is named like
// reservationsrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like reservationsrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
// The m metrics (which may be nil) are updated by the resources.
// Possible errors will be returned after possible wrapping.
// The application use case is returned, so it may be used by the
// background jobs too.
func Register(
	ctx context.Context,
	e *gin.Engine,
	p repo.Pool,
	c *cfg1.Config,
	m *metrics.Metrics,
) (*appuc.UseCase, error) {
	appUseCase, issuer, err := NewAppUseCase(ctx, p, c)
	if err != nil {
		return nil, err
	}
	Mount(e, appUseCase, issuer, m)
	return appUseCase, nil
}

// NewAppUseCase creates the postgres repositories and the token issuer
// and passes them to the application use case. Actual instantiation of
// use case objects are delegated to the c Config instance and the appuc
// use case which is reloaded once, so the mutable settings are fetched
// from the database.
func NewAppUseCase(
	ctx context.Context, p repo.Pool, c *cfg1.Config,
) (*appuc.UseCase, *jwtauth.Issuer, error) {
	issuer, err := c.Auth.NewIssuer()
	if err != nil {
		return nil, nil, fmt.Errorf("creating token issuer: %w", err)
	}
	settingsRepo := settingsrp.New(c)
	appUseCase, err := c.NewAppUseCase(p, settingsRepo, appuc.Deps{
		Repos: appuc.Repos{
			Users:         usersrp.New(),
			Parkings:      parkingsrp.New(),
			Reservations:  reservationsrp.New(),
			Sessions:      sessionsrp.New(),
			Subscriptions: subscriptionsrp.New(),
		},
		Hasher: c.PasswordHasher(),
		Issuer: issuer,
	})
	if err != nil {
		return nil, nil, fmt.Errorf(
			"creating application use case: %w", err,
		)
	}
	err = appUseCase.Reload(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"reloading use cases based on DB: %w", err,
		)
	}
	return appUseCase, issuer, nil
}

// Mount registers all resources of the app use case under BasePath.
// The v verifier authenticates the bearer tokens of protected APIs.
// The GET /metrics API is registered too, if m is not nil.
func Mount(
	e *gin.Engine, app *appuc.UseCase, v authmw.Verifier,
	m *metrics.Metrics,
) {
	if m != nil {
		e.Use(m.Middleware())
		m.Register(e)
	}
	auth := authmw.Required(v)
	r := e.Group(BasePath)
	settingsrs.Register(r, app, m, auth)
	usersrs.Register(r, app, m, auth)
	parkingsrs.Register(r, app, m, auth)
	reservationsrs.Register(r, app, m, auth)
	sessionsrs.Register(r, app, m, auth)
	subscriptionsrs.Register(r, app, m, auth)
}
