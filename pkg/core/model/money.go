// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Money is an immutable amount of some currency, kept as an integer
// number of cents (the minor unit) in order to avoid floating point
// drift during the pricing computations. Arithmetic between two Money
// values with different currencies is rejected and no operation may
// produce a negative amount.
//
// The zero value is not a valid Money because it has no currency.
// Use NewMoney or ParseMoney for instantiation.
type Money struct {
	cents    int64
	currency string
}

// These errors are returned by Money constructors and arithmetic
// methods. They represent programming errors (an invariant violation)
// rather than user errors, so callers usually wrap and propagate them.
var (
	ErrNegativeMoney    = errors.New("money amount may not be negative")
	ErrCurrencyMismatch = errors.New("currencies do not match")
	ErrInvalidCurrency  = errors.New("currency must have 3 upper letters")
)

// NewMoney creates a Money instance with the given amount of cents
// and the 3-letters ISO 4217 currency code, e.g., EUR.
func NewMoney(cents int64, currency string) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeMoney
	}
	if err := validateCurrency(currency); err != nil {
		return Money{}, err
	}
	return Money{cents: cents, currency: currency}, nil
}

// MustMoney is like NewMoney but panics for invalid arguments.
// It is meant for constants and tests.
func MustMoney(cents int64, currency string) Money {
	m, err := NewMoney(cents, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount of the given currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(0, currency)
}

func validateCurrency(c string) error {
	if len(c) != 3 {
		return ErrInvalidCurrency
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return ErrInvalidCurrency
		}
	}
	return nil
}

// ParseMoney parses a decimal amount like "12.5" or "3.50" and
// returns it as a Money of the given currency. At most two fractional
// digits are accepted.
func ParseMoney(amount, currency string) (Money, error) {
	whole, frac, hasFrac := strings.Cut(amount, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return Money{}, fmt.Errorf("malformed amount: %q", amount)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("parsing whole part: %w", err)
	}
	var f int64
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return Money{}, fmt.Errorf("malformed fraction: %q", frac)
		}
	}
	if w > (math.MaxInt64-f)/100 {
		return Money{}, fmt.Errorf("amount is too large: %q", amount)
	}
	return NewMoney(w*100+f, currency)
}

// Cents returns the amount in the minor currency unit.
func (m Money) Cents() int64 {
	return m.cents
}

// Currency returns the ISO 4217 code of m.
func (m Money) Currency() string {
	return m.currency
}

// IsZero reports whether m has a zero amount.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// Add returns m+o. Both operands must share the same currency.
func (m Money) Add(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{cents: m.cents + o.cents, currency: m.currency}, nil
}

// Sub returns m-o. Both operands must share the same currency and
// the result may not be negative.
func (m Money) Sub(o Money) (Money, error) {
	if m.currency != o.currency {
		return Money{}, ErrCurrencyMismatch
	}
	if o.cents > m.cents {
		return Money{}, ErrNegativeMoney
	}
	return Money{cents: m.cents - o.cents, currency: m.currency}, nil
}

// MulRat returns m*num/den, rounded half-up to the nearest cent.
// The den must be positive and num may not be negative.
func (m Money) MulRat(num, den int64) (Money, error) {
	switch {
	case den <= 0:
		return Money{}, fmt.Errorf("non-positive denominator: %d", den)
	case num < 0:
		return Money{}, ErrNegativeMoney
	}
	n := m.cents * num
	c := n / den
	if r := n % den; 2*r >= den {
		c++
	}
	return Money{cents: c, currency: m.currency}, nil
}

// Cmp compares m and o, returning -1, 0, or +1. Amounts of distinct
// currencies are not comparable and ErrCurrencyMismatch is returned.
func (m Money) Cmp(o Money) (int, error) {
	if m.currency != o.currency {
		return 0, ErrCurrencyMismatch
	}
	switch {
	case m.cents < o.cents:
		return -1, nil
	case m.cents > o.cents:
		return 1, nil
	}
	return 0, nil
}

// Amount returns the decimal amount as a string with exactly two
// fractional digits, e.g., "0.88".
func (m Money) Amount() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}

// String returns m like "12.50 EUR".
func (m Money) String() string {
	return m.Amount() + " " + m.currency
}

// LogValue implements slog.LogValuer.
func (m Money) LogValue() slog.Value {
	return slog.StringValue(m.String())
}

// MarshalText encodes m as its String representation.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses the "12.50 EUR" format as produced by the
// MarshalText method.
func (m *Money) UnmarshalText(text []byte) error {
	amount, currency, ok := strings.Cut(string(text), " ")
	if !ok {
		return fmt.Errorf("expected amount and currency: %q", text)
	}
	mm, err := ParseMoney(amount, currency)
	if err != nil {
		return err
	}
	*m = mm
	return nil
}
