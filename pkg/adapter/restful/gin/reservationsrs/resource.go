// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package reservationsrs realizes the reservations resource, allowing
// the reservation booking, cancellation, completion, and invoicing
// REST APIs to be accepted and delegated to the reservations use case.
package reservationsrs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/authmw"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
)

type resource struct {
	app *appuc.UseCase
	m   *metrics.Metrics
}

// Register instantiates a resource adapting the reservations use case
// of the app use case with the relevant REST APIs including:
//  1. POST request to /api/cpweb/v1/reservations
//     in order to book a space in a parking,
//  2. GET request to /api/cpweb/v1/reservations
//     in order to list reservations of the authenticated user,
//  3. GET request to /api/cpweb/v1/reservations/:rid
//     in order to fetch one of them,
//  4. DELETE request to /api/cpweb/v1/reservations/:rid
//     in order to cancel it before its start time,
//  5. POST request to /api/cpweb/v1/reservations/:rid/complete
//     in order to complete it without a parking session,
//  6. GET request to /api/cpweb/v1/reservations/:rid/invoice
//     in order to compute its settlement.
//
// All APIs need authentication and work on the user own reservations.
func Register(
	r *gin.RouterGroup, app *appuc.UseCase, m *metrics.Metrics,
	auth gin.HandlerFunc,
) {
	rs := &resource{app: app, m: m}
	g := r.Group("reservations", auth)
	g.POST("", rs.CreateReservation)
	g.GET("", rs.ListReservations)
	g.GET(":rid", rs.GetReservation)
	g.DELETE(":rid", rs.CancelReservation)
	g.POST(":rid/complete", rs.CompleteReservation)
	g.GET(":rid/invoice", rs.Invoice)
}

func (rs *resource) CreateReservation(c *gin.Context) {
	req, ok := rs.DserCreateReservationReq(c)
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	r, err := rs.app.ReservationsUseCase().Create(
		c, p.UserID, req.ParkingID, req.StartTime, req.EndTime,
	)
	if err != nil {
		if cerr.Is(err, cerr.KindNoAvailableSpace) {
			rs.m.Observe(metrics.EventNoAvailableSpace)
		}
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventReservationCreated)
	c.JSON(http.StatusCreated, r)
}

func (rs *resource) ListReservations(c *gin.Context) {
	p, _ := authmw.PrincipalOf(c)
	list, err := rs.app.ReservationsUseCase().ListByUser(c, p.UserID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (rs *resource) GetReservation(c *gin.Context) {
	rid, ok := serdser.UUIDParam(c, "rid")
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	r, err := rs.app.ReservationsUseCase().Get(c, p.UserID, rid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (rs *resource) CancelReservation(c *gin.Context) {
	rid, ok := serdser.UUIDParam(c, "rid")
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	r, err := rs.app.ReservationsUseCase().Cancel(c, p.UserID, rid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventReservationCancelled)
	c.JSON(http.StatusOK, r)
}

func (rs *resource) CompleteReservation(c *gin.Context) {
	rid, ok := serdser.UUIDParam(c, "rid")
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	uc := rs.app.ReservationsUseCase()
	if _, err := uc.Get(c, p.UserID, rid); err != nil {
		serdser.SerErr(c, err)
		return
	}
	r, err := uc.Complete(c, rid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventReservationCompleted)
	c.JSON(http.StatusOK, r)
}

func (rs *resource) Invoice(c *gin.Context) {
	rid, ok := serdser.UUIDParam(c, "rid")
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	inv, err := rs.app.ReservationsUseCase().Invoice(c, p.UserID, rid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
