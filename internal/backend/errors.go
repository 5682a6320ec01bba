// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a filtered select matches no row.
var ErrNotFound = errors.New("backend: row not found")

// Error codes returned by the backing service.
const (
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotConfirmed  = "EMAIL_NOT_CONFIRMED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
)

// Error is a non-2xx response from the backing service.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s: %s", e.Code, e.Message)
}

// Temporary reports whether retrying the request could succeed.
func (e *Error) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// AsError unwraps err into an [*Error], or returns nil.
func AsError(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// HasCode reports whether err is an [*Error] with the given code.
func HasCode(err error, code string) bool {
	e := AsError(err)
	return e != nil && e.Code == code
}

// Message returns the user-facing message carried by err.
func Message(err error) string {
	if e := AsError(err); e != nil && e.Message != "" {
		return e.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "Not found"
	}
	return "Something went wrong. Please try again."
}
