// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/uptowngym/internal/platform/middleware"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// claimsVerifier maps bearer strings straight to fixed claims.
type claimsVerifier map[string]*sec.AuthClaims

func (v claimsVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := v[token]; ok {
		return claims, nil
	}
	return nil, assert.AnError
}

func newTestRouter(seed ...*Profile) http.Handler {
	service, _ := newTestService(seed...)
	verifier := claimsVerifier{"admin": adminClaims, "member": memberClaims}

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(verifier))
	router.Mount("/rest/v1/profiles", NewHandler(service).Routes())
	return router
}

func call(t *testing.T, router http.Handler, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, target, reader)
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHandler_SelectByID(t *testing.T) {
	router := newTestRouter(&Profile{ID: memberID, Email: "member@example.com", Role: sec.RoleMember})

	recorder := call(t, router, http.MethodGet, "/rest/v1/profiles?id=eq."+memberID, "member", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var profile Profile
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &profile))
	assert.Equal(t, sec.RoleMember, profile.Role)

	recorder = call(t, router, http.MethodGet, "/rest/v1/profiles?id=eq."+otherID, "member", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = call(t, router, http.MethodGet, "/rest/v1/profiles?id=gt.5", "member", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = call(t, router, http.MethodGet, "/rest/v1/profiles?id=eq."+memberID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandler_List(t *testing.T) {
	router := newTestRouter(
		&Profile{ID: memberID, Email: "member@example.com", Role: sec.RoleMember},
		&Profile{ID: otherID, Email: "other@example.com", Role: sec.RoleMember},
	)

	recorder := call(t, router, http.MethodGet, "/rest/v1/profiles?limit=1", "admin", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "0-0/2", recorder.Header().Get("Content-Range"))

	recorder = call(t, router, http.MethodGet, "/rest/v1/profiles", "member", nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestHandler_InsertAndPatch(t *testing.T) {
	router := newTestRouter()

	recorder := call(t, router, http.MethodPost, "/rest/v1/profiles", "member", map[string]any{
		"id": memberID, "email": "member@example.com", "full_name": "Aline Uwase",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = call(t, router, http.MethodPost, "/rest/v1/profiles", "member", map[string]any{
		"id": memberID, "email": "member@example.com",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = call(t, router, http.MethodPatch, "/rest/v1/profiles?id=eq."+memberID, "member", map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = call(t, router, http.MethodPatch, "/rest/v1/profiles?id=eq."+memberID, "admin", map[string]any{"role": "staff", "is_staff": true})
	require.Equal(t, http.StatusOK, recorder.Code)

	var profile Profile
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &profile))
	assert.Equal(t, sec.RoleStaff, profile.Role)

	recorder = call(t, router, http.MethodPatch, "/rest/v1/profiles", "admin", map[string]any{"full_name": "x"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
