// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine creation, so the configuration
// layer may decide about the logging and recovery middlewares without
// depending on how they are implemented.
package gin

import (
	"log/slog"

	ginslogger "github.com/FabienMht/ginslog/logger"
	ginslogrecovery "github.com/FabienMht/ginslog/recovery"
	"github.com/gin-gonic/gin"
)

type (
	HandlerFunc = gin.HandlerFunc
	Engine      = gin.Engine
)

// New creates a bare gin engine and installs the given middlewares
// on it, in order.
func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// Logger returns a middleware which logs every request using the
// l structured logger.
func Logger(l *slog.Logger) HandlerFunc {
	return ginslogger.New(l)
}

// Recovery returns a middleware which recovers from panics, logs them
// using the l structured logger, and responds with a 500 status code.
func Recovery(l *slog.Logger) HandlerFunc {
	return ginslogrecovery.New(l)
}
