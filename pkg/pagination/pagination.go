// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination parses PostgREST-style `limit` / `offset` query
// parameters for list endpoints and produces the matching Content-Range value.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of rows returned when no limit is given.
	DefaultLimit = 50
	// MaxLimit caps a single page.
	MaxLimit = 500
)

// Params holds the parsed window of a list request.
type Params struct {
	Limit  int
	Offset int
}

// FromRequest parses "limit" and "offset". Invalid, negative or excessive
// values are clamped to defaults.
func FromRequest(request *http.Request) Params {
	limit := parseIntParam(request, "limit", DefaultLimit)
	offset := parseIntParam(request, "offset", 0)

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// ContentRange renders "<first>-<last>/<total>" for a page of count rows, or
// "*/<total>" when the page is empty.
func (p Params) ContentRange(count, total int) string {
	if count == 0 {
		return fmt.Sprintf("*/%d", total)
	}
	return fmt.Sprintf("%d-%d/%d", p.Offset, p.Offset+count-1, total)
}

func parseIntParam(request *http.Request, key string, fallback int) int {
	raw := request.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
