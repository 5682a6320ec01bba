// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/taibuivan/uptowngym/internal/backend"
)

const (
	pathProfiles  = "/rest/v1/profiles"
	pathAuditLogs = "/rest/v1/audit_logs"
)

// eq builds a single equality filter.
func eq(column, value string) url.Values {
	return url.Values{column: {"eq." + value}}
}

// notFound maps a 404 response onto [backend.ErrNotFound].
func notFound(err error) error {
	if apiErr := backend.AsError(err); apiErr != nil && apiErr.Status == http.StatusNotFound {
		return errors.Join(backend.ErrNotFound, err)
	}
	return err
}

// # Profiles

type profileTable struct {
	client *Client
}

func (table *profileTable) selectOne(context context.Context, query url.Values) (*backend.Profile, error) {
	token, err := table.client.bearer(context)
	if err != nil {
		return nil, err
	}

	var profile backend.Profile
	if err := table.client.do(context, http.MethodGet, pathProfiles, query, nil, &profile, token); err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

func (table *profileTable) SelectByID(context context.Context, id string) (*backend.Profile, error) {
	return table.selectOne(context, eq("id", id))
}

func (table *profileTable) SelectByEmail(context context.Context, email string) (*backend.Profile, error) {
	return table.selectOne(context, eq("email", email))
}

type profileInsert struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
	IsStaff  bool   `json:"is_staff"`
}

func (table *profileTable) Insert(context context.Context, profile *backend.Profile) (*backend.Profile, error) {
	token, err := table.client.bearer(context)
	if err != nil {
		return nil, err
	}

	body := profileInsert{
		ID:       profile.ID,
		Email:    profile.Email,
		FullName: profile.FullName,
		Role:     profile.Role,
		IsAdmin:  profile.IsAdmin,
		IsStaff:  profile.IsStaff,
	}

	var created backend.Profile
	if err := table.client.do(context, http.MethodPost, pathProfiles, nil, body, &created, token); err != nil {
		return nil, err
	}
	return &created, nil
}

func (table *profileTable) Update(context context.Context, id string, patch backend.ProfilePatch) (*backend.Profile, error) {
	token, err := table.client.bearer(context)
	if err != nil {
		return nil, err
	}

	var updated backend.Profile
	if err := table.client.do(context, http.MethodPatch, pathProfiles, eq("id", id), patch, &updated, token); err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

// # Audit Logs

type auditTable struct {
	client *Client
}

func (table *auditTable) Insert(context context.Context, entry backend.AuditEntry) error {
	token, err := table.client.bearer(context)
	if err != nil {
		return err
	}
	return table.client.do(context, http.MethodPost, pathAuditLogs, nil, entry, nil, token)
}
