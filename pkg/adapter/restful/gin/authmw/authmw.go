// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package authmw provides the gin middlewares which authenticate the
// REST requests by their bearer tokens and authorize them by the role
// of their principals.
package authmw

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/momeni/clean-parking/pkg/adapter/auth/jwtauth"
	"github.com/momeni/clean-parking/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/model"
)

const principalKey = "cpweb.principal"

// Verifier parses and verifies a token, returning its principal.
type Verifier interface {
	Parse(token string) (*jwtauth.Principal, error)
}

// Required returns a middleware which aborts the request with 401
// unless it carries a valid "Authorization: Bearer <token>" header.
// The verified principal is stored in the gin context and may be
// obtained by the PrincipalOf function.
func Required(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			abort(c, cerr.Authentication(
				errors.New("bearer token is missing"),
			))
			return
		}
		p, err := v.Parse(token)
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRole returns a middleware which aborts the request with 403
// unless its principal has the role role. It must be installed after
// the Required middleware.
func RequireRole(role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalOf(c)
		if !ok {
			abort(c, cerr.Authentication(
				errors.New("request is not authenticated"),
			))
			return
		}
		if p.Role != role {
			abort(c, cerr.Authorization(
				errors.New("the "+string(role)+" role is required"),
			))
			return
		}
		c.Next()
	}
}

// PrincipalOf returns the authenticated principal of the c request.
func PrincipalOf(c *gin.Context) (*jwtauth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*jwtauth.Principal)
	return p, ok
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, err error) {
	serdser.SerErr(c, err)
	c.Abort()
}
