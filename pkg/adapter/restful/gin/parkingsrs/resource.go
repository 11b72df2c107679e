// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package parkingsrs realizes the parkings resource, allowing the
// parkings registration, search, and availability REST APIs to be
// accepted and delegated to the parkings and availability use cases.
package parkingsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/authmw"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
)

type resource struct {
	app *appuc.UseCase
	m   *metrics.Metrics
}

// Register instantiates a resource adapting the parkings and
// availability use cases of the app use case with the relevant REST
// APIs including:
//  1. POST request to /api/cpweb/v1/parkings
//     in order to register a parking (by an owner),
//  2. GET request to /api/cpweb/v1/parkings
//     in order to list all parkings, or the nearby ones if lat and
//     lon query parameters are given,
//  3. GET request to /api/cpweb/v1/parkings/:pid
//     in order to fetch a parking,
//  4. GET request to /api/cpweb/v1/parkings/:pid/availability
//     in order to check the free spaces at an instant or during
//     a time window.
//
// Only the registration API needs authentication.
func Register(
	r *gin.RouterGroup, app *appuc.UseCase, m *metrics.Metrics,
	auth gin.HandlerFunc,
) {
	rs := &resource{app: app, m: m}
	r.POST(
		"parkings", auth, authmw.RequireRole(model.RoleOwner),
		rs.RegisterParking,
	)
	r.GET("parkings", rs.ListParkings)
	r.GET("parkings/:pid", rs.GetParking)
	r.GET("parkings/:pid/availability", rs.Availability)
}

func (rs *resource) RegisterParking(c *gin.Context) {
	req, ok := rs.DserRegisterParkingReq(c)
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	created, err := rs.app.ParkingsUseCase().Register(c, p.UserID, req)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventParkingRegistered)
	c.JSON(http.StatusCreated, created)
}

func (rs *resource) ListParkings(c *gin.Context) {
	req, ok := rs.DserListParkingsReq(c)
	if !ok {
		return
	}
	if req.Near == nil {
		pp, err := rs.app.ParkingsUseCase().List(c)
		if err != nil {
			serdser.SerErr(c, err)
			return
		}
		c.JSON(http.StatusOK, pp)
		return
	}
	near, err := rs.app.ParkingsUseCase().Nearby(c, *req.Near, req.RadiusKm)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, near)
}

func (rs *resource) GetParking(c *gin.Context) {
	pid, ok := serdser.UUIDParam(c, "pid")
	if !ok {
		return
	}
	p, err := rs.app.ParkingsUseCase().Get(c, pid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (rs *resource) Availability(c *gin.Context) {
	req, ok := rs.DserAvailabilityReq(c)
	if !ok {
		return
	}
	avail := rs.app.AvailabilityUseCase()
	if req.At != nil {
		n, err := avail.AvailableSpacesAt(c, req.ParkingID, *req.At)
		if err != nil {
			serdser.SerErr(c, err)
			return
		}
		c.JSON(http.StatusOK, AvailabilityResp{
			ParkingID:       req.ParkingID,
			AvailableSpaces: &n,
		})
		return
	}
	free, err := avail.HasAvailableSpacesDuring(
		c, req.ParkingID, req.Start, req.End, req.Required, nil,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, AvailabilityResp{
		ParkingID: req.ParkingID,
		Available: &free,
	})
}
