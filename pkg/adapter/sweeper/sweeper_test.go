package sweeper_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momeni/clean-parking/pkg/adapter/metrics"
	"github.com/momeni/clean-parking/pkg/adapter/sweeper"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidArgs(t *testing.T) {
	_, err := sweeper.New(nil, time.Second, nil)
	assert.Error(t, err)
	_, err = sweeper.New(func(context.Context) (int, error) {
		return 0, nil
	}, 0, nil)
	assert.Error(t, err)
}

func TestOnceCountsSweptReservations(t *testing.T) {
	m := metrics.New()
	results := []struct {
		n   int
		err error
	}{{2, nil}, {0, errors.New("db is down")}, {1, nil}}
	i := 0
	s, err := sweeper.New(func(context.Context) (int, error) {
		r := results[i]
		i++
		return r.n, r.err
	}, time.Minute, m)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, 2, s.Once(ctx))
	assert.Equal(t, 0, s.Once(ctx))
	assert.Equal(t, 1, s.Once(ctx))

	expected := `
# HELP cpweb_domain_events_total Number of reservation, session, and other events.
# TYPE cpweb_domain_events_total counter
cpweb_domain_events_total{event="reservation_swept"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(
		m.Registry(), strings.NewReader(expected),
		"cpweb_domain_events_total",
	))
}

func TestRunStopsWithContext(t *testing.T) {
	var calls atomic.Int32
	s, err := sweeper.New(func(ctx context.Context) (int, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok, "each sweep must have a timeout")
		calls.Add(1)
		return 0, nil
	}, 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
