// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import "strings"

// SystemAuditLogTable represents the 'system.auditlog' table.
type SystemAuditLogTable struct {
	Table      string
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Metadata   string
	IPAddress  string
	CreatedAt  string
}

// SystemAuditLog is the schema definition for system.auditlog.
var SystemAuditLog = SystemAuditLogTable{
	Table:      "system.auditlog",
	ID:         "id",
	ActorID:    "actorid",
	Action:     "action",
	EntityType: "entitytype",
	EntityID:   "entityid",
	Metadata:   "metadata",
	IPAddress:  "ipaddress",
	CreatedAt:  "createdat",
}

// Columns returns all column names in insert order.
func (t SystemAuditLogTable) Columns() []string {
	return []string{
		t.ID, t.ActorID, t.Action, t.EntityType, t.EntityID, t.Metadata, t.IPAddress, t.CreatedAt,
	}
}

// InsertSQL returns a full-row INSERT statement.
func (t SystemAuditLogTable) InsertSQL() string {
	columns := t.Columns()
	return "INSERT INTO " + t.Table + " (" + strings.Join(columns, ", ") + ") VALUES (" + Placeholders(len(columns)) + ")"
}
