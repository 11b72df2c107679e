// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the core layer errors. Each Error carries a
// Kind so callers may branch on the failure class and an HTTP status
// code so the restful adapters can report it without another mapping.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

// Supported error kinds. The zero Kind is used by errors which were
// created by the generic constructors (like BadRequest) and carry no
// domain specific classification.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindInvalidTimeWindow
	KindNoAvailableSpace
	KindUnauthenticated
	KindForbidden
	KindAlreadyExists
	KindConflict
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindNotFound:          "not-found",
	KindInvalidArgument:   "invalid-argument",
	KindInvalidTimeWindow: "invalid-time-window",
	KindNoAvailableSpace:  "no-available-space",
	KindUnauthenticated:   "unauthenticated",
	KindForbidden:         "forbidden",
	KindAlreadyExists:     "already-exists",
	KindConflict:          "conflict",
}

// String returns the kebab-case name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

type Error struct {
	Err            error
	HTTPStatusCode int
	Kind           Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

func Authentication(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusUnauthorized,
		Kind: KindUnauthenticated,
	}
}

func Authorization(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusForbidden,
		Kind: KindForbidden,
	}
}

func NotFound(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusNotFound,
		Kind: KindNotFound,
	}
}

func Conflict(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusConflict,
		Kind: KindConflict,
	}
}

// InvalidArgument reports a malformed or out of range input.
func InvalidArgument(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusBadRequest,
		Kind: KindInvalidArgument,
	}
}

// InvalidTimeWindow reports a time window which is in the past, too
// short or long, reversed, or outside of the parking opening hours.
func InvalidTimeWindow(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusBadRequest,
		Kind: KindInvalidTimeWindow,
	}
}

// NoAvailableSpace reports that the capacity is exhausted.
func NoAvailableSpace(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusConflict,
		Kind: KindNoAvailableSpace,
	}
}

// AlreadyExists reports a uniqueness violation.
func AlreadyExists(err error) *Error {
	return &Error{
		Err: err, HTTPStatusCode: http.StatusConflict,
		Kind: KindAlreadyExists,
	}
}

// KindOf returns the Kind of the first *Error in the err chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err chain contains an *Error with the k kind.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
