package settings_test

import (
	"testing"
	"time"

	"github.com/momeni/clean-parking/pkg/adapter/config/settings"
	"github.com/stretchr/testify/assert"
)

func TestDurationMarshal(t *testing.T) {
	for d, s := range map[time.Duration]string{
		15 * time.Minute:             "15m",
		2 * time.Hour:                "2h",
		90 * time.Second:             "1m30s",
		3*time.Hour + 4*time.Minute:  "3h4m",
		26*time.Hour + 5*time.Second: "26h0m5s",
	} {
		dd := settings.Duration(d)
		assert.Equal(t, s, *dd.Marshal(), "duration %v", d)
	}
	var nilDur *settings.Duration
	assert.Nil(t, nilDur.Marshal())
	assert.Nil(t, nilDur.Std())
	assert.Nil(t, settings.FromStd(nil))
}

func TestVerifyRange(t *testing.T) {
	minb, maxb := int64(10), int64(20)
	v := int64(25)
	pv := &v
	err := settings.VerifyRange(&pv, &minb, &maxb)
	if assert.NotNil(t, err) {
		assert.False(t, err.LessThanMin)
		assert.Equal(t, int64(25), *err.Value)
	}
	assert.Equal(t, int64(20), *pv, "value must be clamped to max")

	v = 5
	err = settings.VerifyRange(&pv, &minb, nil)
	if assert.NotNil(t, err) {
		assert.True(t, err.LessThanMin)
	}
	assert.Equal(t, int64(10), *pv)

	pv = nil
	assert.Nil(t, settings.VerifyRange(&pv, &minb, &maxb))

	err = settings.VerifyRange(&pv, &maxb, &minb)
	if assert.NotNil(t, err) {
		assert.True(t, err.InvalidRange)
	}
}
