// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package settingsrs realizes the settings resource, allowing the
// settings fetching and replacement (mutation) REST APIs to be accepted
// and delegated to the application use case properly.
package settingsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/authmw"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/log"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
)

type resource struct {
	app *appuc.UseCase
	m   *metrics.Metrics
}

// Register instantiates a resource adapting the app use case instance
// with the relevant REST APIs including:
//  1. PUT request to /api/cpweb/v1/settings
//     in order to update the mutable settings and reload the cpweb
//     use cases (only by parking owners).
//  2. GET request to /api/cpweb/v1/settings
//     in order to fetch the current visible settings and their
//     boundary values.
func Register(
	r *gin.RouterGroup, app *appuc.UseCase, m *metrics.Metrics,
	auth gin.HandlerFunc,
) {
	rs := &resource{app: app, m: m}
	r.PUT(
		"settings", auth, authmw.RequireRole(model.RoleOwner),
		rs.UpdateSettings,
	)
	r.GET("settings", rs.FetchSettings)
}

func (rs *resource) UpdateSettings(c *gin.Context) {
	req, ok := rs.DserUpdateSettingsReq(c)
	if !ok {
		return
	}
	vs, minb, maxb, err := rs.app.UpdateSettings(c, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	p, _ := authmw.PrincipalOf(c)
	log.Info(c, "settings are updated", log.UUID("by", p.UserID))
	rs.m.Observe(metrics.EventSettingsUpdated)
	c.JSON(http.StatusOK, SettingsResp{
		Settings:  vs,
		MinBounds: minb,
		MaxBounds: maxb,
	})
}

func (rs *resource) FetchSettings(c *gin.Context) {
	vs := rs.app.Settings()
	minb, maxb := rs.app.Bounds()
	c.JSON(http.StatusOK, SettingsResp{
		Settings:  &vs,
		MinBounds: minb,
		MaxBounds: maxb,
	})
}
