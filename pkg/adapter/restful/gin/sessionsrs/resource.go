// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sessionsrs realizes the parking sessions resource, allowing
// the check-in and check-out REST APIs to be accepted and delegated to
// the sessions use case.
package sessionsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/authmw"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
)

type resource struct {
	app *appuc.UseCase
	m   *metrics.Metrics
}

// Register instantiates a resource adapting the sessions use case of
// the app use case with the relevant REST APIs including:
//  1. POST request to /api/cpweb/v1/sessions
//     in order to enter a parking (check-in),
//  2. PATCH request to /api/cpweb/v1/sessions/:sid
//     in order to exit the parking (check-out) and settle it,
//  3. GET request to /api/cpweb/v1/sessions/:sid
//     in order to fetch a session.
func Register(
	r *gin.RouterGroup, app *appuc.UseCase, m *metrics.Metrics,
	auth gin.HandlerFunc,
) {
	rs := &resource{app: app, m: m}
	g := r.Group("sessions", auth)
	g.POST("", rs.Enter)
	g.PATCH(":sid", rs.Exit)
	g.GET(":sid", rs.GetSession)
}

func (rs *resource) Enter(c *gin.Context) {
	req, ok := rs.DserEnterReq(c)
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	s, err := rs.app.SessionsUseCase().Enter(
		c, p.UserID, req.ParkingID, nil,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventSessionEntered)
	c.JSON(http.StatusCreated, s)
}

func (rs *resource) Exit(c *gin.Context) {
	req, ok := rs.DserExitReq(c)
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	uc := rs.app.SessionsUseCase()
	if _, err := uc.Get(c, p.UserID, req.SessionID); err != nil {
		serdser.SerErr(c, err)
		return
	}
	res, err := uc.Exit(c, req.SessionID, nil)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventSessionExited)
	if res.WasOverstayed {
		rs.m.Observe(metrics.EventSessionOverstayed)
	}
	c.JSON(http.StatusOK, res)
}

func (rs *resource) GetSession(c *gin.Context) {
	sid, ok := serdser.UUIDParam(c, "sid")
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	s, err := rs.app.SessionsUseCase().Get(c, p.UserID, sid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
