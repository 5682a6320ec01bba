// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/uptowngym/internal/platform/middleware"
	requestutil "github.com/taibuivan/uptowngym/internal/platform/request"
	"github.com/taibuivan/uptowngym/internal/platform/respond"
	"github.com/taibuivan/uptowngym/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the `/auth/v1` endpoints.
type Handler struct {
	authService       *Service
	credentialLimiter func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler]. Credential endpoints (sign-up,
// token, recover, verify) are limited to requestsPerMinute per client IP.
func NewHandler(service *Service, requestsPerMinute int) *Handler {
	return &Handler{
		authService:       service,
		credentialLimiter: middleware.CredentialLimit(requestsPerMinute),
	}
}

// Routes returns a [chi.Router] configured with the auth endpoints.
//
// # Endpoints
//   - POST /signup  : Creates an account.
//   - POST /token   : password or refresh_token grant.
//   - POST /logout  : Revokes the caller's refresh session.
//   - GET  /user    : Returns the caller.
//   - PUT  /user    : Updates the caller's password.
//   - POST /recover : Mails a recovery link.
//   - POST /verify  : Redeems a confirmation or recovery token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(handler.credentialLimiter)
		r.Post("/signup", handler.signUp)
		r.Post("/token", handler.token)
		r.Post("/recover", handler.recoverPassword)
		r.Post("/verify", handler.verify)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/user", handler.getUser)
		r.Put("/user", handler.updateUser)
	})

	return router
}

// # Request Payloads

type signUpRequest struct {
	Email      string       `json:"email"`
	Password   string       `json:"password"`
	Data       UserMetadata `json:"data"`
	RedirectTo string       `json:"redirect_to"`
}

type tokenRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

type verifyRequest struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type updateUserRequest struct {
	Password string `json:"password"`
}

/*
SignUp creates a new account.

POST /auth/v1/signup

Response:
  - 200: TokenResponse when confirmation is disabled
  - 200: SignUpResponse when a confirmation mail was sent
  - 400: Validation failure
  - 409: Email already registered
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Password(FieldPassword, input.Password).
		MaxLen(FieldFullName, input.Data.FullName, 120)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.SignUp(request.Context(), SignUpInput{
		Email:      input.Email,
		Password:   input.Password,
		FullName:   input.Data.FullName,
		RedirectTo: input.RedirectTo,
		UserAgent:  request.UserAgent(),
		IPAddress:  middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Session != nil {
		respond.OK(writer, result.Session)
		return
	}

	respond.OK(writer, SignUpResponse{User: result.User, ConfirmationSentAt: *result.ConfirmationSentAt})
}

/*
Token issues a session for a password or refresh_token grant.

POST /auth/v1/token?grant_type=password|refresh_token

Response:
  - 200: TokenResponse
  - 400: Invalid credentials, unconfirmed email or unsupported grant
  - 401: Invalid refresh token
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	grantType := request.URL.Query().Get(FieldGrantType)
	validator := &validate.Validator{}
	validator.OneOf(FieldGrantType, grantType, GrantPassword, GrantRefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var (
		session *TokenResponse
		err     error
	)

	switch grantType {
	case GrantPassword:
		validator.Required(FieldEmail, input.Email).Required(FieldPassword, input.Password)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
		session, err = handler.authService.SignInWithPassword(request.Context(), PasswordGrant{
			Email:     input.Email,
			Password:  input.Password,
			UserAgent: request.UserAgent(),
			IPAddress: middleware.RealIP(request),
		})

	case GrantRefreshToken:
		validator.Required(FieldRefresh, input.RefreshToken)
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
		session, err = handler.authService.Refresh(request.Context(), input.RefreshToken, request.UserAgent(), middleware.RealIP(request))
	}

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Logout revokes the refresh session bound to the bearer token.

POST /auth/v1/logout

Response:
  - 204: Session revoked (or already gone)
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.SignOut(request.Context(), claims.SessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GetUser returns the caller.

GET /auth/v1/user
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.GetUser(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateUser sets a new password for the caller.

PUT /auth/v1/user

Response:
  - 200: User
  - 400: Password policy violation
*/
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateUserRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Password(FieldPassword, input.Password).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.UpdatePassword(request.Context(), claims.UserID, claims.SessionID, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
RecoverPassword mails a password recovery link.

POST /auth/v1/recover

Response:
  - 200: Always, whether or not the address is registered
*/
func (handler *Handler) recoverPassword(writer http.ResponseWriter, request *http.Request) {
	var input recoverRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Recover(request.Context(), input.Email, input.RedirectTo); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, struct{}{})
}

/*
Verify redeems a one-time token.

POST /auth/v1/verify

Response:
  - 200: TokenResponse
  - 401: Token invalid or expired
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldType, input.Type, VerifySignup, VerifyRecovery).Required(FieldToken, input.Token)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Verify(request.Context(), VerifyInput{
		Type:      input.Type,
		Token:     input.Token,
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}
