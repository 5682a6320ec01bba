// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/uptowngym/internal/platform/constants"
	"github.com/taibuivan/uptowngym/internal/platform/ctxutil"
	"github.com/taibuivan/uptowngym/internal/platform/middleware"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.AuthClaims
}

func (s stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

type stubChecker struct {
	admins map[string]bool
}

func (s stubChecker) IsAdmin(_ context.Context, claims *sec.AuthClaims) (bool, error) {
	return s.admins[claims.UserID], nil
}

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		writer.Header().Set("X-User", claims.UserID)
	}
	writer.WriteHeader(http.StatusOK)
})

func serve(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		request.Header.Set(constants.HeaderAuthorization, authorization)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestAuthenticate covers anonymous, malformed, invalid and valid bearer headers.
*/
func TestAuthenticate(t *testing.T) {
	handler := middleware.Authenticate(stubVerifier{claims: &sec.AuthClaims{UserID: "u1"}})(okHandler)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"malformed", "Token good", http.StatusUnauthorized, ""},
		{"invalid_token", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid_token", "Bearer good", http.StatusOK, "u1"},
		{"case_insensitive_scheme", "bearer good", http.StatusOK, "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(handler, tt.header)
			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantUser, recorder.Header().Get("X-User"))
		})
	}
}

/*
TestRequireAdmin verifies 401 for anonymous, 403 for members and 200 for admins.
*/
func TestRequireAdmin(t *testing.T) {
	checker := stubChecker{admins: map[string]bool{"admin-1": true}}

	build := func(userID string) http.Handler {
		gate := middleware.RequireAdmin(checker)(okHandler)
		return middleware.Authenticate(stubVerifier{claims: &sec.AuthClaims{UserID: userID}})(gate)
	}

	assert.Equal(t, http.StatusUnauthorized, serve(build("admin-1"), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(build("member-1"), "Bearer good").Code)
	assert.Equal(t, http.StatusOK, serve(build("admin-1"), "Bearer good").Code)
}

func TestRequestID(t *testing.T) {
	handler := middleware.RequestID()(okHandler)

	recorder := serve(handler, "")
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "given-id")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "given-id", recorder.Header().Get(constants.HeaderXRequestID))
}

func TestCredentialLimit(t *testing.T) {
	handler := middleware.CredentialLimit(2)(okHandler)

	assert.Equal(t, http.StatusOK, serve(handler, "").Code)
	assert.Equal(t, http.StatusOK, serve(handler, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, "").Code)
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.5:5123"
	assert.Equal(t, "10.0.0.5", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

func TestSecurityHeaders(t *testing.T) {
	recorder := serve(middleware.SecurityHeaders(okHandler), "")
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
}
