// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit implements the append-only `audit_logs` record set.

Clients write an entry for security-relevant actions such as sign-in. The
actor is always the caller; entries cannot be edited or deleted through the
API.
*/
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one row of system.auditlog.
type Entry struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IPAddress  string          `json:"ip_address,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Known actions written by gym clients.
const (
	ActionLogin      = "login"
	ActionLogout     = "logout"
	ActionRoleChange = "role_change"
)

// Field identifiers for validation errors.
const (
	FieldAction     = "action"
	FieldEntityType = "entity_type"
	FieldMetadata   = "metadata"
)

// Repository defines the data access contract for audit entries.
type Repository interface {
	// Insert appends an entry.
	Insert(context context.Context, entry *Entry) error
}
