// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "$1", Placeholders(1))
	assert.Equal(t, "$1, $2, $3", Placeholders(3))
	assert.Contains(t, Placeholders(12), "$10, $11, $12")
}

func TestSystemAuditLog_InsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO system.auditlog (id, actorid, action, entitytype, entityid, metadata, ipaddress, createdat) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		SystemAuditLog.InsertSQL(),
	)
}
