// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already_canonical", "member@example.com", "member@example.com"},
		{"upper_case", "Admin@UptownGym.RW", "admin@uptowngym.rw"},
		{"surrounding_space", "  admin@uptowngym.rw\t", "admin@uptowngym.rw"},
		{"fullwidth", "ａｄｍｉｎ@uptowngym.rw", "admin@uptowngym.rw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Email(tt.input))
		})
	}
}

func TestEqualEmail(t *testing.T) {
	assert.True(t, EqualEmail("ADMIN@uptowngym.rw", " admin@uptowngym.rw"))
	assert.False(t, EqualEmail("admin@uptowngym.rw", "admin2@uptowngym.rw"))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Aline Uwase", FullName("  Aline \n  Uwase "))
	assert.Equal(t, "Élise", FullName("Élise"))
	assert.Equal(t, "", FullName("   "))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AU", Initials("aline uwase"))
	assert.Equal(t, "JM", Initials("Jean  Marie Habimana"))
	assert.Equal(t, "", Initials(""))
}
