// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taibuivan/uptowngym/internal/session"
	"github.com/taibuivan/uptowngym/pkg/textnorm"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// identity is the printable view of a signed-in state.
type identity struct {
	Authenticated bool              `json:"authenticated"          yaml:"authenticated"`
	User          *session.AuthUser `json:"user,omitempty"         yaml:"user,omitempty"`
	IsAdmin       bool              `json:"is_admin"               yaml:"is_admin"`
	RoleVerified  bool              `json:"role_verified"          yaml:"role_verified"`
	AdminVerified *bool             `json:"admin_verified,omitempty" yaml:"admin_verified,omitempty"`
}

func identityOf(state session.State) identity {
	return identity{
		Authenticated: state.IsAuthenticated,
		User:          state.User,
		IsAdmin:       state.IsAdmin,
		RoleVerified:  state.RoleResolved,
	}
}

// writeIdentity prints view in format.
func writeIdentity(out io.Writer, view identity, format string) error {
	switch strings.ToLower(format) {
	case outputJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)

	case outputYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return fmt.Errorf("encode_yaml: %w", err)
		}
		return encoder.Close()

	case outputText, "":
		_, err := io.WriteString(out, renderIdentity(view))
		return err

	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func renderIdentity(view identity) string {
	if !view.Authenticated || view.User == nil {
		return "Not signed in.\n"
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	name := view.User.FullName
	if name == "" {
		name = view.User.Email
	}
	row("Name", fmt.Sprintf("%s (%s)", name, textnorm.Initials(name)))
	row("Email", view.User.Email)

	role := string(view.User.Role)
	if !view.RoleVerified {
		role += " (unverified)"
	}
	row("Role", role)

	if view.IsAdmin {
		row("Admin", adminStyle.Render("yes"))
	} else {
		row("Admin", "no")
	}
	if view.AdminVerified != nil {
		row("Checked", fmt.Sprintf("%t", *view.AdminVerified))
	}
	return b.String()
}
