// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/momeni/clean-parking/pkg/adapter/config"
	"github.com/momeni/clean-parking/pkg/adapter/config/cfg1"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
database:
  host: 127.0.0.1
  port: 5432
  name: cpweb
  pass-dir: /tmp/cpweb
versions:
  database: %s
  config: 1.0.0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReadsSecretFromEnvFile(t *testing.T) {
	r := require.New(t)
	t.Setenv(cfg1.SecretEnv, "")
	os.Unsetenv(cfg1.SecretEnv)
	cfgPath := writeFile(t, "cpweb.yaml", fmt.Sprintf(minimalConfig, "1.0.0"))
	envPath := writeFile(
		t, ".env",
		cfg1.SecretEnv+"=0123456789abcdef0123456789abcdef\n",
	)
	c, err := config.Load(cfgPath, envPath, "/non/existent/.env")
	r.NoError(err)
	r.Equal(cfg1.DefaultCurrency, c.Usecases.Currency)
	r.Equal(cfg1.DefaultLocation, c.Usecases.Location)
	r.False(*c.Gin.Logger)
}

func TestLoadRejectsIncompatibleSchema(t *testing.T) {
	t.Setenv(cfg1.SecretEnv, "0123456789abcdef0123456789abcdef")
	cfgPath := writeFile(t, "cpweb.yaml", fmt.Sprintf(minimalConfig, "2.0.0"))
	_, err := config.Load(cfgPath)
	require.Error(t, err)
}
