// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization and deserialization
// helpers which are shared by all resource packages.
package serdser

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/momeni/clean-parking/pkg/core/cerr"
	"github.com/momeni/clean-parking/pkg/core/log"
	"github.com/momeni/clean-parking/pkg/core/model"
)

// Bind deserializes the c request into req using the b binding and
// validates it. Validation failures are reported as a 400 response
// which maps each field name to its error messages. It returns false
// if a response is written already.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, nameToErrs)
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": err.Error(),
		})
	}
	return false
}

func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	if elist, ok := (*errs)[name]; !ok {
		(*errs)[name] = msgs
	} else {
		(*errs)[name] = append(elist, msgs...)
	}
}

func Assert(
	errs *map[string][]string, ok bool, name string, msgs ...string,
) bool {
	if ok {
		return true
	}
	AddErr(errs, name, msgs...)
	return false
}

// SerErr writes err as a JSON response. A *cerr.Error determines the
// status code and its kind is reported too. Other errors are logged
// and reported as internal server errors.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		c.JSON(ce.HTTPStatusCode, gin.H{
			"detail": ce.Err.Error(),
			"kind":   ce.Kind.String(),
		})
		return
	}
	log.Error(
		c, "request failed",
		slog.String("path", c.Request.URL.Path), log.Err("err", err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"detail": err.Error(),
	})
}

// UUIDParam parses the name path parameter as a UUID, reporting a 400
// response if it is malformed.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		var errs map[string][]string
		AddErr(&errs, name, "Path param "+name+" is not UUID.")
		c.JSON(http.StatusBadRequest, errs)
		return uuid.Nil, false
	}
	return id, true
}

// StrCoordinate holds the latitude and longitude query parameters.
type StrCoordinate struct {
	Lat string `form:"lat" binding:"required,latitude"`
	Lon string `form:"lon" binding:"required,longitude"`
}

// ToModel parses sc as a model.Coordinate.
func (sc StrCoordinate) ToModel() (c model.Coordinate, err error) {
	var lat, lon float64
	lat, err = strconv.ParseFloat(sc.Lat, 64)
	if err != nil {
		return
	}
	lon, err = strconv.ParseFloat(sc.Lon, 64)
	if err != nil {
		return
	}
	return model.NewCoordinate(lat, lon)
}
