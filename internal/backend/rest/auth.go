// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/taibuivan/uptowngym/internal/backend"
)

// # Auth Endpoints

const (
	pathSignUp  = "/auth/v1/signup"
	pathToken   = "/auth/v1/token"
	pathLogout  = "/auth/v1/logout"
	pathUser    = "/auth/v1/user"
	pathRecover = "/auth/v1/recover"
)

// SignInWithPassword implements [backend.Auth]. It emits [backend.EventSignedIn].
func (client *Client) SignInWithPassword(context context.Context, email, password string) (*backend.Session, error) {
	var response tokenResponse
	err := client.do(context, http.MethodPost, pathToken, url.Values{"grant_type": {"password"}},
		map[string]string{"email": email, "password": password}, &response, "")
	if err != nil {
		return nil, err
	}

	session, err := response.toSession(client.now())
	if err != nil {
		return nil, err
	}

	client.storeSession(context, session, backend.EventSignedIn)
	return session, nil
}

type signUpRequest struct {
	Email    string               `json:"email"`
	Password string               `json:"password"`
	Data     backend.UserMetadata `json:"data"`
}

type pendingSignUp struct {
	backend.User
	ConfirmationSentAt *time.Time `json:"confirmation_sent_at"`
}

// SignUp implements [backend.Auth]. A live session is stored and announced with
// [backend.EventSignedIn]; a pending confirmation returns only the user.
func (client *Client) SignUp(context context.Context, email, password string, metadata backend.UserMetadata) (*backend.SignUpResult, error) {
	var raw json.RawMessage
	err := client.do(context, http.MethodPost, pathSignUp, nil,
		signUpRequest{Email: email, Password: password, Data: metadata}, &raw, "")
	if err != nil {
		return nil, err
	}

	var granted tokenResponse
	if err := json.Unmarshal(raw, &granted); err != nil {
		return nil, fmt.Errorf("rest_decode_signup: %w", err)
	}

	if granted.AccessToken != "" {
		session, err := granted.toSession(client.now())
		if err != nil {
			return nil, err
		}
		client.storeSession(context, session, backend.EventSignedIn)
		return &backend.SignUpResult{User: session.User, Session: session}, nil
	}

	var pending pendingSignUp
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("rest_decode_signup: %w", err)
	}
	return &backend.SignUpResult{User: pending.User, ConfirmationSentAt: pending.ConfirmationSentAt}, nil
}

// SignOut implements [backend.Auth]. The local session is dropped and
// [backend.EventSignedOut] emitted even when the remote call fails.
func (client *Client) SignOut(context context.Context) error {
	session, err := client.current(context)
	if err != nil {
		client.dropSession(context)
		return err
	}

	var remoteErr error
	if session != nil {
		remoteErr = client.do(context, http.MethodPost, pathLogout, nil, nil, nil, session.AccessToken)
		if apiErr := backend.AsError(remoteErr); apiErr != nil &&
			(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			// Already revoked or expired on the server.
			remoteErr = nil
		}
	}

	client.dropSession(context)
	return remoteErr
}

// GetSession implements [backend.Auth]. An expiring session is refreshed first;
// a rejected refresh token signs the client out.
func (client *Client) GetSession(context context.Context) (*backend.Session, error) {
	session, err := client.current(context)
	if err != nil || session == nil {
		return nil, err
	}

	if !session.Expired(client.now(), client.refreshMargin) {
		return session, nil
	}

	return client.refresh(context, session.RefreshToken)
}

// RefreshSession forces a refresh-token grant.
func (client *Client) RefreshSession(context context.Context) (*backend.Session, error) {
	session, err := client.current(context)
	if err != nil || session == nil {
		return nil, err
	}
	return client.refresh(context, session.RefreshToken)
}

func (client *Client) refresh(context context.Context, refreshToken string) (*backend.Session, error) {
	var response tokenResponse
	err := client.do(context, http.MethodPost, pathToken, url.Values{"grant_type": {"refresh_token"}},
		map[string]string{"refresh_token": refreshToken}, &response, "")
	if err != nil {
		if apiErr := backend.AsError(err); apiErr != nil && !apiErr.Temporary() {
			client.logger.Info("session_refresh_rejected", slog.String("code", apiErr.Code))
			client.dropSession(context)
			return nil, nil
		}
		return nil, err
	}

	session, err := response.toSession(client.now())
	if err != nil {
		return nil, err
	}

	client.storeSession(context, session, backend.EventTokenRefreshed)
	return session, nil
}

// ResetPasswordForEmail implements [backend.Auth].
func (client *Client) ResetPasswordForEmail(context context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	return client.do(context, http.MethodPost, pathRecover, nil, body, nil, "")
}

// UpdateUser implements [backend.Auth]. It emits [backend.EventUserUpdated].
func (client *Client) UpdateUser(context context.Context, attributes backend.UserAttributes) (*backend.User, error) {
	session, err := client.GetSession(context)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, &backend.Error{Status: http.StatusUnauthorized, Code: backend.CodeUnauthorized, Message: "Auth session missing"}
	}

	var user backend.User
	if err := client.do(context, http.MethodPut, pathUser, nil, attributes, &user, session.AccessToken); err != nil {
		return nil, err
	}

	updated := *session
	updated.User = user
	client.storeSession(context, &updated, backend.EventUserUpdated)

	return &user, nil
}
