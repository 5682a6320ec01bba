// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/taibuivan/uptowngym/internal/platform/apperr"
	"github.com/taibuivan/uptowngym/internal/platform/validate"
)

// isTerminal reports whether prompts can be shown.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// credentials collects what a command needs from the user.
type credentials struct {
	Email    string
	Password string
	FullName string
}

// credentialForm selects which fields a command asks for.
type credentialForm struct {
	email           bool
	password        bool
	fullName        bool
	confirmPassword bool
	passwordTitle   string
}

/*
promptCredentials fills the missing fields of c.

Fields given by flags are not asked again. Without a terminal every required
field must already be set.
*/
func promptCredentials(c *credentials, form credentialForm) error {
	var fields []huh.Field

	if form.email && c.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&c.Email).
			Validate(checkEmail))
	}
	if form.fullName && c.FullName == "" {
		fields = append(fields, huh.NewInput().
			Title("Full name").
			Value(&c.FullName).
			Validate(checkFullName))
	}

	var confirmation string
	if form.password && c.Password == "" {
		title := form.passwordTitle
		if title == "" {
			title = "Password"
		}
		fields = append(fields, huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&c.Password).
			Validate(checkPassword))

		if form.confirmPassword {
			fields = append(fields, huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirmation).
				Validate(func(value string) error {
					if value != c.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}))
		}
	}

	if len(fields) == 0 {
		return nil
	}
	if !isTerminal() {
		return errors.New("missing credentials: pass them as flags when stdin is not a terminal")
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt_credentials: %w", err)
	}
	return nil
}

// # Field Checks

func checkEmail(value string) error {
	var validator validate.Validator
	return fieldError(validator.Required("email", value).Email("email", value).Err())
}

func checkPassword(value string) error {
	var validator validate.Validator
	return fieldError(validator.Password("password", value).Err())
}

func checkFullName(value string) error {
	var validator validate.Validator
	return fieldError(validator.Required("full_name", value).MaxLen("full_name", value, 120).Err())
}

// fieldError flattens a validation error to its first field message.
func fieldError(err error) error {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		return errors.New(appErr.Details[0].Message)
	}
	return err
}
