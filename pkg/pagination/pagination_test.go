// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{"defaults", "", Params{Limit: DefaultLimit}},
		{"explicit", "?limit=10&offset=20", Params{Limit: 10, Offset: 20}},
		{"too_large", "?limit=100000", Params{Limit: DefaultLimit}},
		{"negative_offset", "?offset=-3", Params{Limit: DefaultLimit}},
		{"garbage", "?limit=abc&offset=xyz", Params{Limit: DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/rest/v1/profiles"+tt.query, nil)
			assert.Equal(t, tt.expected, FromRequest(request))
		})
	}
}

func TestContentRange(t *testing.T) {
	params := Params{Limit: 10, Offset: 20}
	assert.Equal(t, "20-29/45", params.ContentRange(10, 45))
	assert.Equal(t, "*/45", params.ContentRange(0, 45))
}
