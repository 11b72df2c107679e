// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/momeni/clean-parking/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const sampleConfig = `
database:
  host: 127.0.0.1
  port: 5432
  name: cpweb
  pass-dir: /tmp/cpweb
gin:
  logger: true
  recovery: true
usecases:
  pricing:
    quarter: 15m
    quarter-minimum: 5m
    quarter-maximum: 1h
    base-penalty-cents: 2000
    base-penalty-cents-minimum: 0
  reservations:
    min-duration: 30m
    max-duration: 24h
    max-duration-maximum: 72h
  currency: USD
  location: Europe/Paris
versions:
  database: 1.0.0
  config: 1.0.0
`

func TestLoadNormalizesDefaults(t *testing.T) {
	t.Setenv(cfg1.SecretEnv, testSecret)
	r := require.New(t)
	c, err := cfg1.Load([]byte(sampleConfig))
	r.NoError(err)
	r.Equal("scram-sha-256", c.Database.AuthMethod)
	r.NotNil(c.PasswordHasher())
	r.Equal(cfg1.DefaultIssuer, c.Auth.Issuer)
	r.Equal(cfg1.DefaultTokenTTL, time.Duration(*c.Auth.TokenTTL))
	r.Equal(model.SemVer{1, 0, 0}, c.SchemaVersion())

	vs := c.Visible().Model()
	r.Equal(15*time.Minute, *vs.Pricing.Quarter)
	r.Equal(int64(2000), *vs.Pricing.BasePenaltyCents)
	r.Equal(30*time.Minute, *vs.Reservations.MinDuration)
	r.Equal(24*time.Hour, *vs.Reservations.MaxDuration)
	r.Equal(&model.ImmutableSettings{
		Logger:   true,
		Currency: "USD",
		Location: "Europe/Paris",
	}, vs.ImmutableSettings)

	minb, maxb := c.Bounds()
	r.Equal(5*time.Minute, *minb.Pricing.Quarter)
	r.Equal(time.Hour, *maxb.Pricing.Quarter)
	r.Nil(maxb.Pricing.BasePenaltyCents)
	r.Nil(minb.Reservations.MaxDuration)
	r.Equal(72*time.Hour, *maxb.Reservations.MaxDuration)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv(cfg1.SecretEnv, testSecret)
	cases := map[string][2]string{
		"out of range quarter":   {"quarter: 15m", "quarter: 2h"},
		"unknown auth method":    {"pass-dir: /tmp/cpweb", "pass-dir: /tmp/cpweb\n  auth-method: md5"},
		"unknown location":       {"Europe/Paris", "Mars/Olympus"},
		"newer config version":   {"config: 1.0.0", "config: 1.1.0"},
		"other major version":    {"config: 1.0.0", "config: 2.0.0"},
		"invalid currency code":  {"currency: USD", "currency: DOLLAR"},
		"negative penalty value": {"base-penalty-cents: 2000", "base-penalty-cents: -1"},
	}
	for name, repl := range cases {
		t.Run(name, func(t *testing.T) {
			data := strings.Replace(sampleConfig, repl[0], repl[1], 1)
			_, err := cfg1.Load([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestAuthSecret(t *testing.T) {
	r := require.New(t)
	t.Setenv(cfg1.SecretEnv, "")
	_, err := cfg1.Load([]byte(sampleConfig))
	r.Error(err, "a secret is mandatory")

	path := filepath.Join(t.TempDir(), "secret")
	r.NoError(os.WriteFile(path, []byte(testSecret+"\n"), 0o600))
	data := strings.Replace(
		sampleConfig, "usecases:", "auth:\n  secret-file: "+path+
			"\n  token-ttl: 2h\nusecases:", 1,
	)
	c, err := cfg1.Load([]byte(data))
	r.NoError(err)
	r.Equal(2*time.Hour, time.Duration(*c.Auth.TokenTTL))
	iss, err := c.Auth.NewIssuer()
	r.NoError(err)
	token, _, err := iss.Issue(&model.User{Role: model.RoleUser})
	r.NoError(err)
	r.NotEmpty(token)

	r.NoError(os.WriteFile(path, []byte("short"), 0o600))
	_, err = cfg1.Load([]byte(data))
	r.Error(err, "short secrets must be rejected")
}

func TestMutateAndClamp(t *testing.T) {
	t.Setenv(cfg1.SecretEnv, testSecret)
	r := require.New(t)
	base, err := cfg1.Load([]byte(sampleConfig))
	r.NoError(err)

	q := 3 * time.Hour
	ser := cfg1.SerializableOf(&model.Settings{
		VisibleSettings: model.VisibleSettings{
			Pricing: model.PricingSettings{Quarter: &q},
		},
	})
	c := base.Clone()
	r.NoError(c.Mutate(ser))
	r.Error(c.Usecases.ValidateAndNormalize(), "3h exceeds 1h maximum")

	c = base.Clone()
	r.NoError(c.Mutate(ser))
	c.Usecases.Clamp(context.Background())
	vs := c.Visible().Model()
	r.Equal(time.Hour, *vs.Pricing.Quarter)
	r.Nil(vs.Pricing.BasePenaltyCents, "nil settings overwrite the base")
	r.Equal(15*time.Minute, time.Duration(*base.Usecases.Pricing.Quarter))

	ser.Immutable = &cfg1.Immutable{}
	r.Error(c.Mutate(ser), "immutable settings must be rejected")
}

func TestMarshalYAML(t *testing.T) {
	t.Setenv(cfg1.SecretEnv, testSecret)
	r := require.New(t)
	c, err := cfg1.Load([]byte(sampleConfig))
	r.NoError(err)
	b, err := yaml.Marshal(c)
	r.NoError(err)
	s := string(b)
	r.Contains(s, "quarter: 15m\n")
	r.Contains(s, "max-duration: 24h\n")
	r.Contains(s, "config: 1.0.0\n")
	r.NotContains(s, testSecret)
	c2, err := cfg1.Load(b)
	r.NoError(err)
	r.Equal(c.Visible(), c2.Visible())
}
