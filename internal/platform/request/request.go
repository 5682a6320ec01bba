// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides body decoding, bearer claims and PostgREST-style equality filters
(`?id=eq.<value>`) behind small helpers with consistent errors.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/ctxutil"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
	"github.com/taibuivan/uptowngym/internal/platform/validate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
EqFilter reads a PostgREST-style equality filter such as `?email=eq.a@b.rw`.

Returns:
  - string: the filter value
  - bool: false when the parameter is absent
  - error: validation error when the parameter uses another operator
*/
func EqFilter(request *http.Request, column string) (string, bool, error) {
	raw := request.URL.Query().Get(column)
	if raw == "" {
		return "", false, nil
	}

	value, found := strings.CutPrefix(raw, "eq.")
	if !found || value == "" {
		return "", false, validate.RequiredError(column, "Only eq.<value> filters are supported")
	}

	return value, true, nil
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
