// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package usersrs realizes the users resource, allowing the sign up,
// login, and profile REST APIs to be accepted and delegated to the
// users use case.
package usersrs

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

// Register instantiates a resource adapting the users use case of the
// app use case with the relevant REST APIs including:
//  1. POST request to /api/cpweb/v1/users
//     in order to sign up a driver or parking owner,
//  2. POST request to /api/cpweb/v1/users/login
//     in order to obtain a bearer token,
//  3. GET request to /api/cpweb/v1/users/me
//     in order to fetch the authenticated user profile.
//
// The auth middleware is only installed on the profile API.
func Register(
	r *gin.RouterGroup, app *appuc.UseCase, m *metrics.Metrics,
	auth gin.HandlerFunc,
) {
	rs := &resource{app: app, m: m}
	r.POST("users", rs.SignUp)
	r.POST("users/login", rs.Login)
	r.GET("users/me", auth, rs.Me)
}

func (rs *resource) SignUp(c *gin.Context) {
	req, ok := rs.DserSignUpReq(c)
	if !ok {
		return
	}
	u, err := rs.app.UsersUseCase().Register(
		c, req.Email, req.Name, req.Password, req.Role,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventUserRegistered)
	c.JSON(http.StatusCreated, u)
}

func (rs *resource) Login(c *gin.Context) {
	req, ok := rs.DserLoginReq(c)
	if !ok {
		return
	}
	tok, err := rs.app.UsersUseCase().Login(c, req.Email, req.Password)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (rs *resource) Me(c *gin.Context) {
	p, _ := authmw.PrincipalOf(c)
	u, err := rs.app.UsersUseCase().Get(c, p.UserID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
