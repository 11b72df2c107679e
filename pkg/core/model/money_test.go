// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	a := model.MustMoney(350, "EUR")
	b := model.MustMoney(75, "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "4.25 EUR", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(275), diff.Cents())

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, model.ErrNegativeMoney)
	_, err = a.Add(model.MustMoney(1, "USD"))
	assert.ErrorIs(t, err, model.ErrCurrencyMismatch)

	// 350 / 4 = 87.5 which rounds half-up
	q, err := a.MulRat(1, 4)
	require.NoError(t, err)
	assert.Equal(t, "0.88 EUR", q.String())

	c, err := a.Cmp(b)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestParseMoney(t *testing.T) {
	for in, cents := range map[string]int64{
		"0": 0, "2.8": 280, "2.80": 280, "12.05": 1205, "20": 2000,
	} {
		m, err := model.ParseMoney(in, "EUR")
		require.NoError(t, err, in)
		assert.Equal(t, cents, m.Cents(), in)
	}
	for _, in := range []string{"", "1.", ".5", "1.234", "-1", "x"} {
		_, err := model.ParseMoney(in, "EUR")
		assert.Error(t, err, in)
	}
	_, err := model.ParseMoney("1", "euro")
	assert.Error(t, err)
}

func TestMoneyText(t *testing.T) {
	m := model.MustMoney(1250, "EUR")
	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "12.50 EUR", string(b))

	var got model.Money
	require.NoError(t, got.UnmarshalText(b))
	assert.Equal(t, m, got)
	assert.Error(t, got.UnmarshalText([]byte("12.50")))
}
