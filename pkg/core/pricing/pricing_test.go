package pricing_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/momeni/clean-parking/pkg/core/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, opts ...pricing.Option) *pricing.Engine {
	e, err := pricing.New(opts...)
	require.NoError(t, err)
	return e
}

func TestPriceRoundsUpToQuarters(t *testing.T) {
	e := newEngine(t)
	cases := []struct {
		rate    int64
		minutes int
		want    int64
	}{
		{350, 10, 88},
		{280, 60, 280},
		{280, 1, 70},
		{280, 15, 70},
		{280, 16, 140},
		{100, 45, 75},
		{333, 24 * 60, 7992},
	}
	for _, c := range cases {
		rate := model.MustMoney(c.rate, "EUR")
		end := t0.Add(time.Duration(c.minutes) * time.Minute)
		got, err := e.Price(rate, t0, end)
		require.NoError(t, err)
		assert.Equal(t, c.want, got.Cents(), "rate=%d min=%d", c.rate, c.minutes)
		assert.Equal(t, "EUR", got.Currency())
	}
}

func TestPriceFailsForEmptyWindow(t *testing.T) {
	e := newEngine(t)
	rate := model.MustMoney(500, "EUR")
	_, err := e.Price(rate, t0, t0)
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument))
	_, err = e.Price(rate, t0, t0.Add(-time.Minute))
	assert.True(t, cerr.Is(err, cerr.KindInvalidArgument))
}

func TestPenalty(t *testing.T) {
	e := newEngine(t)
	rate := model.MustMoney(280, "EUR")
	auth := t0
	p, err := e.Penalty(rate, auth, auth)
	require.NoError(t, err)
	assert.True(t, p.IsZero())
	p, err = e.Penalty(rate, auth, auth.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, p.IsZero())

	p, err = e.Penalty(rate, auth, auth.Add(20*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2000+2*70), p.Cents())
}

func TestOptions(t *testing.T) {
	e := newEngine(t,
		pricing.WithQuarter(30*time.Minute),
		pricing.WithBasePenaltyCents(0),
	)
	rate := model.MustMoney(400, "USD")
	got, err := e.Price(rate, t0, t0.Add(31*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(400), got.Cents())
	p, err := e.Penalty(rate, t0, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(200), p.Cents())

	_, err = pricing.New(pricing.WithQuarter(90 * time.Second))
	assert.Error(t, err)
	_, err = pricing.New(
		pricing.WithQuarter(time.Minute), pricing.WithQuarter(time.Hour),
	)
	assert.Error(t, err)
	_, err = pricing.New(pricing.WithBasePenaltyCents(-1))
	assert.Error(t, err)
}

func ExampleEngine_Price() {
	e, _ := pricing.New()
	rate, _ := model.ParseMoney("3.50", "EUR")
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	amount, _ := e.Price(rate, start, start.Add(10*time.Minute))
	fmt.Println(amount)
	// Output: 0.88 EUR
}
