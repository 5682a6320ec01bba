// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/uptowngym/internal/platform/request"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

func TestEqFilter(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantValue string
		wantFound bool
		wantErr   bool
	}{
		{"absent", "", "", false, false},
		{"equality", "email=eq.member@example.com", "member@example.com", true, false},
		{"other_operator", "email=like.member%25", "", false, true},
		{"empty_value", "email=eq.", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/rest/v1/profiles?"+tt.query, nil)

			value, found, err := requestutil.EqFilter(request, "email")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.rw"}`))
	require.NoError(t, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target))
	assert.Equal(t, "a@b.rw", target.Email)

	request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	assert.Error(t, requestutil.DecodeJSON(httptest.NewRecorder(), request, &target))
}

func TestRequiredClaims(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := requestutil.RequiredClaims(request)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	ctx := ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{UserID: "u1"}, "tok")
	claims, err := requestutil.RequiredClaims(request.WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}
