// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/momeni/clean-parking/pkg/adapter/auth/jwtauth"
	"github.com/momeni/clean-parking/pkg/adapter/config/settings"
)

// SecretEnv is the environment variable which overrides the contents
// of the Auth.SecretFile file.
const SecretEnv = "CPWEB_JWT_SECRET"

// Default values of the Auth settings.
const (
	DefaultTokenTTL = 24 * time.Hour
	DefaultIssuer   = "cpweb"
)

// Auth contains the access tokens related configuration settings.
// The signing secret is read from the SecretEnv environment variable
// or the SecretFile file (in this order), so it is never written in
// the configuration file itself.
type Auth struct {
	SecretFile string             `yaml:"secret-file,omitempty"`
	TokenTTL   *settings.Duration `yaml:"token-ttl,omitempty"`
	Issuer     string             `yaml:"issuer,omitempty"`

	secret []byte `yaml:"-"`
}

// ValidateAndNormalize loads the signing secret and fills the missing
// token lifetime and issuer name with their defaults.
func (a *Auth) ValidateAndNormalize() error {
	switch s := os.Getenv(SecretEnv); {
	case s != "":
		a.secret = []byte(s)
	case a.SecretFile != "":
		b, err := os.ReadFile(a.SecretFile)
		if err != nil {
			return fmt.Errorf("reading secret file: %w", err)
		}
		a.secret = bytes.TrimSpace(b)
	default:
		return fmt.Errorf("neither %s nor secret-file is set", SecretEnv)
	}
	if l := len(a.secret); l < jwtauth.MinSecretLength {
		return fmt.Errorf(
			"secret has %d bytes, expected at least %d",
			l, jwtauth.MinSecretLength,
		)
	}
	if a.TokenTTL == nil {
		d := settings.Duration(DefaultTokenTTL)
		a.TokenTTL = &d
	}
	if *a.TokenTTL <= 0 {
		return fmt.Errorf("non-positive token-ttl: %v", time.Duration(*a.TokenTTL))
	}
	if a.Issuer == "" {
		a.Issuer = DefaultIssuer
	}
	return nil
}

// NewIssuer creates an access tokens issuer and parser.
func (a Auth) NewIssuer() (*jwtauth.Issuer, error) {
	return jwtauth.New(a.secret, time.Duration(*a.TokenTTL), a.Issuer)
}
