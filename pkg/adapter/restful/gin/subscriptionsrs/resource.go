// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package subscriptionsrs realizes the subscriptions resource, allowing
// the weekly subscriptions REST APIs to be accepted and delegated to
// the subscriptions use case.
package subscriptionsrs

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

// Register instantiates a resource adapting the subscriptions use case
// of the app use case with the relevant REST APIs including:
//  1. POST request to /api/cpweb/v1/subscriptions
//     in order to subscribe to weekly slots of a parking,
//  2. POST request to /api/cpweb/v1/subscriptions/availability
//     in order to check if weekly slots conflict with other active
//     subscriptions of a parking,
//  3. GET request to /api/cpweb/v1/subscriptions/:sid
//     in order to fetch a subscription.
func Register(
	r *gin.RouterGroup, app *appuc.UseCase, m *metrics.Metrics,
	auth gin.HandlerFunc,
) {
	rs := &resource{app: app, m: m}
	g := r.Group("subscriptions", auth)
	g.POST("", rs.CreateSubscription)
	g.POST("availability", rs.Availability)
	g.GET(":sid", rs.GetSubscription)
}

func (rs *resource) CreateSubscription(c *gin.Context) {
	req, ok := rs.DserCreateSubscriptionReq(c)
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	s, err := rs.app.SubscriptionsUseCase().Create(
		c, p.UserID, req.ParkingID, req.WeeklySlots, req.StartDate,
		req.DurationMonths,
	)
	if err != nil {
		if cerr.Is(err, cerr.KindNoAvailableSpace) {
			rs.m.Observe(metrics.EventNoAvailableSpace)
		}
		serdser.SerErr(c, err)
		return
	}
	rs.m.Observe(metrics.EventSubscriptionCreated)
	c.JSON(http.StatusCreated, s)
}

func (rs *resource) Availability(c *gin.Context) {
	req, ok := rs.DserAvailabilityReq(c)
	if !ok {
		return
	}
	free, err := rs.app.SubscriptionsUseCase().HasAvailableSlots(
		c, req.ParkingID, req.WeeklySlots, req.StartDate, req.EndDate,
	)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"parking_id": req.ParkingID,
		"available":  free,
	})
}

func (rs *resource) GetSubscription(c *gin.Context) {
	sid, ok := serdser.UUIDParam(c, "sid")
	if !ok {
		return
	}
	p, _ := authmw.PrincipalOf(c)
	s, err := rs.app.SubscriptionsUseCase().Get(c, p.UserID, sid)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
