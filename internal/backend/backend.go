// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package backend defines the client-side contract of the Uptown Gym backing
service: session issuance, auth state notifications and the `profiles` and
`audit_logs` record sets.

The session coordinator depends only on the interfaces declared here.
Package rest provides the HTTP implementation; tests substitute fakes.
*/
package backend

import (
	"context"
	"encoding/json"
	"time"
)

// # Auth Events

// Event names an auth state change.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventUserUpdated    Event = "USER_UPDATED"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Listener receives auth state changes. Session is nil for [EventSignedOut].
// Listeners must not block.
type Listener func(event Event, session *Session)

// Subscription is a registered [Listener].
type Subscription interface {
	Unsubscribe()
}

// # Entities

// UserMetadata is the free-form data attached at sign-up.
type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

// User is the identity carried by a session.
type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	UserMetadata     UserMetadata `json:"user_metadata"`
	EmailConfirmedAt *time.Time   `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time   `json:"last_sign_in_at,omitempty"`
}

// Session is a live, time-bounded proof of authentication.
//
// ID identifies the server-side refresh session and stays stable for the
// lifetime of a sign-in; it keys background work in the coordinator.
type Session struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token expires within margin of now.
func (session *Session) Expired(now time.Time, margin time.Duration) bool {
	return !session.ExpiresAt.After(now.Add(margin))
}

// SignUpResult is the outcome of a sign-up. Session is nil while email
// confirmation is pending.
type SignUpResult struct {
	User               User
	Session            *Session
	ConfirmationSentAt *time.Time
}

// UserAttributes are the fields accepted by [Auth.UpdateUser].
type UserAttributes struct {
	Password string `json:"password,omitempty"`
}

// Profile is one row of the `profiles` record set.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsAdmin     bool       `json:"is_admin"`
	IsStaff     bool       `json:"is_staff"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	FullName    *string    `json:"full_name,omitempty"`
	Role        *string    `json:"role,omitempty"`
	IsAdmin     *bool      `json:"is_admin,omitempty"`
	IsStaff     *bool      `json:"is_staff,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuditEntry is one row appended to the `audit_logs` record set.
type AuditEntry struct {
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// # Contract

// Auth is the session half of the backing service.
type Auth interface {
	SignInWithPassword(context context.Context, email, password string) (*Session, error)
	SignUp(context context.Context, email, password string, metadata UserMetadata) (*SignUpResult, error)
	SignOut(context context.Context) error

	// GetSession returns the live session or nil when signed out.
	GetSession(context context.Context) (*Session, error)

	OnAuthStateChange(listener Listener) Subscription
	ResetPasswordForEmail(context context.Context, email, redirectTo string) error
	UpdateUser(context context.Context, attributes UserAttributes) (*User, error)
}

// ProfileTable is the `profiles` record set filtered by id or email equality.
type ProfileTable interface {
	SelectByID(context context.Context, id string) (*Profile, error)
	SelectByEmail(context context.Context, email string) (*Profile, error)
	Insert(context context.Context, profile *Profile) (*Profile, error)
	Update(context context.Context, id string, patch ProfilePatch) (*Profile, error)
}

// AuditTable is the `audit_logs` record set.
type AuditTable interface {
	Insert(context context.Context, entry AuditEntry) error
}

// Client is the full backing service.
type Client interface {
	Auth
	Profiles() ProfileTable
	AuditLogs() AuditTable
}
