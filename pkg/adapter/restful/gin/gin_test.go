// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/momeni/clean-parking/internal/test/memrepo"
	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/routes"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/repo"
	"github.com/momeni/clean-parking/pkg/core/usecase/appuc"
	"github.com/stretchr/testify/suite"
)

const testConfig = `
database:
  host: 127.0.0.1
  port: 5432
  name: cpweb
  pass-dir: /tmp/cpweb
gin:
  logger: false
  recovery: true
usecases:
  pricing:
    quarter: 15m
    quarter-minimum: 5m
    quarter-maximum: 1h
    base-penalty-cents: 2000
  reservations:
    min-duration: 15m
    max-duration: 24h
  currency: EUR
  location: UTC
versions:
  database: 1.0.0
  config: 1.0.0
`

// memSettings keeps the mutable settings in memory, mutating and
// validating them like the postgres settings repository.
type memSettings struct {
	confs *cfg1.Config
}

func (ms *memSettings) Conn(repo.Conn) appuc.SettingsConnQueryer {
	return ms
}

func (ms *memSettings) Tx(repo.Tx) appuc.SettingsTxQueryer {
	return ms
}

func (ms *memSettings) Fetch(context.Context) (
	appuc.Builder, *model.VisibleSettings, *model.Settings, *model.Settings,
	error,
) {
	minb, maxb := ms.confs.Bounds()
	return ms.confs, ms.confs.Visible().Model(), minb, maxb, nil
}

func (ms *memSettings) Update(_ context.Context, s *model.Settings) (
	appuc.Builder, *model.VisibleSettings, *model.Settings, *model.Settings,
	error,
) {
	confs := ms.confs.Clone()
	if err := confs.Mutate(cfg1.SerializableOf(s)); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := confs.Usecases.ValidateAndNormalize(); err != nil {
		return nil, nil, nil, nil, cerr.InvalidArgument(err)
	}
	ms.confs = confs
	return ms.Fetch(context.Background())
}

type GinTestSuite struct {
	suite.Suite

	Ctx     context.Context
	Store   *memrepo.Store
	Clock   *memrepo.Clock
	Metrics *metrics.Metrics
	Gin     *gin.Engine
}

func TestGinTestSuite(t *testing.T) {
	suite.Run(t, &GinTestSuite{Ctx: context.Background()})
}

func (gts *GinTestSuite) SetupTest() {
	gts.T().Setenv(cfg1.SecretEnv, "0123456789abcdef0123456789abcdef")
	c, err := cfg1.Load([]byte(testConfig))
	gts.Require().NoError(err, "failed to load the test config")
	issuer, err := c.Auth.NewIssuer()
	gts.Require().NoError(err)

	gts.Store = memrepo.New()
	gts.Clock = memrepo.NewClock(time.Now())
	app, err := c.NewAppUseCase(
		gts.Store.Pool(), &memSettings{confs: c}, appuc.Deps{
			Repos: appuc.Repos{
				Users:         gts.Store.Users(),
				Parkings:      gts.Store.Parkings(),
				Reservations:  gts.Store.Reservations(),
				Sessions:      gts.Store.Sessions(),
				Subscriptions: gts.Store.Subscriptions(),
			},
			Hasher: c.PasswordHasher(),
			Issuer: issuer,
			Clock:  gts.Clock.Now,
		},
	)
	gts.Require().NoError(err)
	gts.Require().NoError(app.Reload(gts.Ctx))

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	gts.Gin = c.Gin.NewEngine(l)
	gts.Require().NotNil(gts.Gin, "cannot instantiate Gin engine")
	gts.Metrics = metrics.New()
	routes.Mount(gts.Gin, app, issuer, gts.Metrics)
}

func (gts *GinTestSuite) do(
	method, path, token string, body any, resp any,
) int {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		gts.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, routes.BasePath+path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, req)
	if resp != nil {
		gts.Require().NoError(
			json.Unmarshal(w.Body.Bytes(), resp), w.Body.String(),
		)
	}
	return w.Code
}

// signUp registers a user with the given role and returns its token.
func (gts *GinTestSuite) signUp(email string, role model.UserRole) string {
	body := map[string]string{
		"email":    email,
		"name":     email,
		"password": "secret-password",
		"role":     string(role),
	}
	var u model.User
	code := gts.do(http.MethodPost, "/users", "", body, &u)
	gts.Require().Equal(http.StatusCreated, code)
	gts.Require().Equal(role, u.Role)

	var tok struct {
		AccessToken string      `json:"access_token"`
		User        *model.User `json:"user"`
	}
	code = gts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email":    email,
		"password": "secret-password",
	}, &tok)
	gts.Require().Equal(http.StatusOK, code)
	gts.Require().Equal(u.ID, tok.User.ID)
	return tok.AccessToken
}

func (gts *GinTestSuite) registerParking(
	token string, spaces int, rate string,
) string {
	var p model.Parking
	code := gts.do(http.MethodPost, "/parkings", token, map[string]any{
		"name":         "Central",
		"address":      "1 Main St",
		"lat":          48.8566,
		"lon":          2.3522,
		"hourly_rate":  rate,
		"total_spaces": spaces,
	}, &p)
	gts.Require().Equal(http.StatusCreated, code)
	gts.Require().Equal(spaces, p.AvailableSpots)
	return p.ID.String()
}

// window returns a one hour window which starts two days later, on
// an hour boundary.
func window() (start, end time.Time) {
	start = time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	return start, start.Add(time.Hour)
}

type errResp struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind"`
}

func (gts *GinTestSuite) TestReservationCapacity() {
	owner := gts.signUp("owner@example.com", model.RoleOwner)
	alice := gts.signUp("alice@example.com", model.RoleUser)
	bob := gts.signUp("bob@example.com", model.RoleUser)
	pid := gts.registerParking(owner, 1, "11.20")
	start, end := window()
	body := map[string]any{
		"parking_id": pid,
		"start_time": start,
		"end_time":   end,
	}

	var r model.Reservation
	code := gts.do(http.MethodPost, "/reservations", alice, body, &r)
	gts.Require().Equal(http.StatusCreated, code)
	gts.Equal("11.20 EUR", r.TotalAmount.String())
	gts.Equal(model.ReservationConfirmed, r.Status)

	var e errResp
	code = gts.do(http.MethodPost, "/reservations", bob, body, &e)
	gts.Equal(http.StatusConflict, code)
	gts.Equal("no-available-space", e.Kind)

	var avail struct {
		Available *bool `json:"available"`
	}
	path := fmt.Sprintf(
		"/parkings/%s/availability?start=%s&end=%s", pid,
		start.Format(time.RFC3339), end.Format(time.RFC3339),
	)
	code = gts.do(http.MethodGet, path, "", nil, &avail)
	gts.Require().Equal(http.StatusOK, code)
	gts.Require().NotNil(avail.Available)
	gts.False(*avail.Available)

	code = gts.do(
		http.MethodDelete, "/reservations/"+r.ID.String(), bob, nil, &e,
	)
	gts.Equal(http.StatusForbidden, code, "only the owner may cancel")

	code = gts.do(
		http.MethodDelete, "/reservations/"+r.ID.String(), alice, nil, &r,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal(model.ReservationCancelled, r.Status)

	code = gts.do(
		http.MethodDelete, "/reservations/"+r.ID.String(), alice, nil, &e,
	)
	gts.Equal(http.StatusConflict, code)
	gts.Equal("conflict", e.Kind)

	var p model.Parking
	code = gts.do(http.MethodGet, "/parkings/"+pid, "", nil, &p)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal(1, p.AvailableSpots)

	code = gts.do(http.MethodPost, "/reservations", bob, body, &r)
	gts.Equal(http.StatusCreated, code, "cancelled space is reusable")
}

func (gts *GinTestSuite) TestOverstayedSession() {
	owner := gts.signUp("owner@example.com", model.RoleOwner)
	alice := gts.signUp("alice@example.com", model.RoleUser)
	pid := gts.registerParking(owner, 2, "4.00")
	start, end := window()

	var r model.Reservation
	code := gts.do(http.MethodPost, "/reservations", alice, map[string]any{
		"parking_id": pid,
		"start_time": start,
		"end_time":   end,
	}, &r)
	gts.Require().Equal(http.StatusCreated, code)

	var e errResp
	code = gts.do(http.MethodPost, "/sessions", alice, map[string]any{
		"parking_id": pid,
		"entry_time": start,
	}, &e)
	gts.Equal(http.StatusForbidden, code, "entry time of clients is ignored")

	gts.Clock.Set(start)
	var s model.ParkingSession
	code = gts.do(http.MethodPost, "/sessions", alice, map[string]any{
		"parking_id": pid,
	}, &s)
	gts.Require().Equal(http.StatusCreated, code)
	gts.True(start.Equal(s.StartTime), "entry time: %v", s.StartTime)
	gts.Require().NotNil(s.ReservationID)
	gts.Equal(r.ID, *s.ReservationID)

	gts.Clock.Set(start.Add(time.Minute))
	code = gts.do(http.MethodPost, "/sessions", alice, map[string]any{
		"parking_id": pid,
	}, &e)
	gts.Equal(http.StatusConflict, code, "double check-in")

	gts.Clock.Set(end.Add(20 * time.Minute))
	var res model.ExitResult
	code = gts.do(
		http.MethodPatch, "/sessions/"+s.ID.String(), alice,
		map[string]any{"exit_time": end}, &res,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.True(res.WasOverstayed, "backdated exit time is ignored")
	gts.Equal("6.00 EUR", res.BaseAmount.String())
	gts.Equal("22.00 EUR", res.OverstayAmount.String())
	gts.Equal("28.00 EUR", res.TotalAmount.String())
	gts.Equal(model.SessionCompleted, res.Status)

	var inv model.Invoice
	code = gts.do(
		http.MethodGet, "/reservations/"+r.ID.String()+"/invoice", alice,
		nil, &inv,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal(int64(20), inv.OverstayMinutes)
	gts.Equal("4.00 EUR", inv.BaseAmount.String())
	gts.Equal("2.00 EUR", inv.OverstayAmount.String())
	gts.Equal("20.00 EUR", inv.PenaltyAmount.String())
	gts.Equal("26.00 EUR", inv.TotalAmount.String())

	code = gts.do(
		http.MethodGet, "/reservations/"+r.ID.String(), alice, nil, &r,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal(model.ReservationCompleted, r.Status)

	code = gts.do(
		http.MethodPatch, "/sessions/"+s.ID.String(), alice, nil, &e,
	)
	gts.Equal(http.StatusConflict, code, "session is not active anymore")

	w := httptest.NewRecorder()
	gts.Gin.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gts.Require().Equal(http.StatusOK, w.Code)
	gts.Contains(
		w.Body.String(),
		`cpweb_domain_events_total{event="session_overstayed"} 1`,
	)
}

func (gts *GinTestSuite) TestSubscriptionConflict() {
	owner := gts.signUp("owner@example.com", model.RoleOwner)
	alice := gts.signUp("alice@example.com", model.RoleUser)
	bob := gts.signUp("bob@example.com", model.RoleUser)
	pid := gts.registerParking(owner, 1, "4.00")
	startDate := time.Now().UTC().AddDate(0, 0, 7).Format(time.DateOnly)
	slots := func(from, to string) map[string]any {
		return map[string]any{
			"1": []map[string]string{{"start": from, "end": to}},
		}
	}

	var sub model.Subscription
	code := gts.do(http.MethodPost, "/subscriptions", alice, map[string]any{
		"parking_id":      pid,
		"weekly_slots":    slots("09:00", "11:00"),
		"start_date":      startDate,
		"duration_months": 1,
	}, &sub)
	gts.Require().Equal(http.StatusCreated, code)
	gts.Equal(model.SubscriptionActive, sub.Status)

	var avail struct {
		Available bool `json:"available"`
	}
	code = gts.do(
		http.MethodPost, "/subscriptions/availability", bob,
		map[string]any{
			"parking_id":   pid,
			"weekly_slots": slots("10:00", "12:00"),
			"start_date":   startDate,
			"end_date":     startDate,
		}, &avail,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.False(avail.Available)

	code = gts.do(
		http.MethodPost, "/subscriptions/availability", bob,
		map[string]any{
			"parking_id":   pid,
			"weekly_slots": slots("11:00", "12:00"),
			"start_date":   startDate,
			"end_date":     startDate,
		}, &avail,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.True(avail.Available, "touching slots do not overlap")

	var e errResp
	code = gts.do(http.MethodPost, "/subscriptions", bob, map[string]any{
		"parking_id":      pid,
		"weekly_slots":    slots("10:00", "12:00"),
		"start_date":      startDate,
		"duration_months": 1,
	}, &e)
	gts.Equal(http.StatusConflict, code)
	gts.Equal("no-available-space", e.Kind)

	code = gts.do(
		http.MethodGet, "/subscriptions/"+sub.ID.String(), alice, nil, &sub,
	)
	gts.Equal(http.StatusOK, code)
}

func (gts *GinTestSuite) TestAuthentication() {
	var e errResp
	code := gts.do(http.MethodGet, "/reservations", "", nil, &e)
	gts.Equal(http.StatusUnauthorized, code)
	gts.Equal("unauthenticated", e.Kind)

	code = gts.do(http.MethodGet, "/reservations", "garbage", nil, &e)
	gts.Equal(http.StatusUnauthorized, code)

	code = gts.do(http.MethodPost, "/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret-password",
	}, &e)
	gts.Equal(http.StatusUnauthorized, code)

	alice := gts.signUp("alice@example.com", model.RoleUser)
	var u model.User
	code = gts.do(http.MethodGet, "/users/me", alice, nil, &u)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal("alice@example.com", u.Email)

	code = gts.do(http.MethodPost, "/parkings", alice, map[string]any{
		"name":         "Central",
		"hourly_rate":  "4.00",
		"total_spaces": 3,
	}, &e)
	gts.Equal(http.StatusForbidden, code, "drivers may not add parkings")
	gts.Equal("forbidden", e.Kind)

	var list []model.Reservation
	code = gts.do(http.MethodGet, "/reservations", alice, nil, &list)
	gts.Equal(http.StatusOK, code)
	gts.Empty(list)
}

func (gts *GinTestSuite) TestBadRequest() {
	alice := gts.signUp("alice@example.com", model.RoleUser)
	for _, tc := range []struct {
		name, method, path string
		body               any
		field              string
	}{
		{
			name:   "malformed reservation id",
			method: http.MethodGet,
			path:   "/reservations/not-a-uuid",
			field:  "rid",
		},
		{
			name:   "missing parking id",
			method: http.MethodPost,
			path:   "/reservations",
			body: map[string]any{
				"start_time": time.Now().Add(time.Hour),
				"end_time":   time.Now().Add(2 * time.Hour),
			},
			field: "ParkingID",
		},
		{
			name:   "nearby search without lon",
			method: http.MethodGet,
			path:   "/parkings?lat=48.8",
			field:  "lat/lon",
		},
		{
			name:   "malformed start date",
			method: http.MethodPost,
			path:   "/subscriptions",
			body: map[string]any{
				"parking_id":      "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
				"weekly_slots":    map[string]any{},
				"start_date":      "next monday",
				"duration_months": 1,
			},
			field: "StartDate",
		},
	} {
		gts.Run(tc.name, func() {
			var errs map[string][]string
			code := gts.do(tc.method, tc.path, alice, tc.body, &errs)
			gts.Equal(http.StatusBadRequest, code)
			gts.Contains(errs, tc.field)
		})
	}

	var e errResp
	start, end := window()
	code := gts.do(http.MethodPost, "/reservations", alice, map[string]any{
		"parking_id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"start_time": start,
		"end_time":   end,
	}, &e)
	gts.Equal(http.StatusNotFound, code)
	gts.Equal("not-found", e.Kind)
}

func (gts *GinTestSuite) TestSettings() {
	var resp struct {
		Settings  model.VisibleSettings `json:"settings"`
		MinBounds model.Settings        `json:"min_bounds"`
		MaxBounds model.Settings        `json:"max_bounds"`
	}
	code := gts.do(http.MethodGet, "/settings", "", nil, &resp)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal(15*time.Minute, *resp.Settings.Pricing.Quarter)
	gts.Equal("EUR", resp.Settings.Currency)
	gts.Equal(time.Hour, *resp.MaxBounds.Pricing.Quarter)

	alice := gts.signUp("alice@example.com", model.RoleUser)
	owner := gts.signUp("owner@example.com", model.RoleOwner)
	half := 30 * time.Minute
	update := &model.Settings{}
	update.Pricing.Quarter = &half
	update.Reservations.MinDuration = resp.Settings.Reservations.MinDuration
	update.Reservations.MaxDuration = resp.Settings.Reservations.MaxDuration
	update.Pricing.BasePenaltyCents = resp.Settings.Pricing.BasePenaltyCents

	var e errResp
	code = gts.do(http.MethodPut, "/settings", alice, update, &e)
	gts.Equal(http.StatusForbidden, code)

	code = gts.do(http.MethodPut, "/settings", owner, update, &resp)
	gts.Require().Equal(http.StatusOK, code)
	gts.Equal(half, *resp.Settings.Pricing.Quarter)

	pid := gts.registerParking(owner, 1, "4.00")
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	var r model.Reservation
	code = gts.do(http.MethodPost, "/reservations", alice, map[string]any{
		"parking_id": pid,
		"start_time": start,
		"end_time":   start.Add(40 * time.Minute),
	}, &r)
	gts.Require().Equal(http.StatusCreated, code)
	gts.Equal("4.00 EUR", r.TotalAmount.String(), "two half hours")

	tooLong := 2 * time.Hour
	update.Pricing.Quarter = &tooLong
	code = gts.do(http.MethodPut, "/settings", owner, update, &e)
	gts.Equal(http.StatusBadRequest, code)
	gts.Equal("invalid-argument", e.Kind)
}

func (gts *GinTestSuite) TestNearbyParkings() {
	owner := gts.signUp("owner@example.com", model.RoleOwner)
	pid := gts.registerParking(owner, 3, "2.00")

	var near []struct {
		ID         string  `json:"id"`
		DistanceKm float64 `json:"distance_km"`
	}
	code := gts.do(
		http.MethodGet, "/parkings?lat=48.86&lon=2.35&radius_km=5", "",
		nil, &near,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.Require().Len(near, 1)
	gts.Equal(pid, near[0].ID)
	gts.Less(near[0].DistanceKm, 1.0)

	code = gts.do(
		http.MethodGet, "/parkings?lat=40.71&lon=-74.00&radius_km=5", "",
		nil, &near,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.Empty(near)

	var avail struct {
		AvailableSpaces *int `json:"available_spaces"`
	}
	at := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	code = gts.do(
		http.MethodGet, "/parkings/"+pid+"/availability?at="+at, "", nil,
		&avail,
	)
	gts.Require().Equal(http.StatusOK, code)
	gts.Require().NotNil(avail.AvailableSpaces)
	gts.Equal(3, *avail.AvailableSpaces)
}
