package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	e := gin.New()
	e.Use(m.Middleware())
	e.GET("/parkings/:pid", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	m.Register(e)

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		e.ServeHTTP(w, httptest.NewRequest(
			http.MethodGet, "/parkings/"+id, nil,
		))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body,
		`cpweb_http_requests_total{method="GET",route="/parkings/:pid",status="204"} 3`,
	)
	assert.Contains(t, body,
		`cpweb_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
	)
	assert.Contains(t, body, "cpweb_http_request_duration_seconds_bucket")
}

func TestObserveEvents(t *testing.T) {
	m := metrics.New()
	m.Observe(metrics.EventReservationCreated)
	m.Observe(metrics.EventReservationCreated)
	m.Add(metrics.EventReservationSwept, 3)
	m.Add(metrics.EventReservationSwept, 0)

	expected := `
# HELP cpweb_domain_events_total Number of reservation, session, and other events.
# TYPE cpweb_domain_events_total counter
cpweb_domain_events_total{event="reservation_created"} 2
cpweb_domain_events_total{event="reservation_swept"} 3
`
	err := testutil.GatherAndCompare(
		m.Registry(), strings.NewReader(expected),
		"cpweb_domain_events_total",
	)
	assert.NoError(t, err)
}

func TestNilMetricsIgnoresObservations(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Observe(metrics.EventSessionEntered)
		m.Add(metrics.EventReservationSwept, 2)
	})

	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(m.Middleware())
	e.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
