// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var input credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long:  "Sign in and keep the session on this machine. Missing credentials are prompted for.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptCredentials(&input, credentialForm{email: true, password: true}); err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			a.start(cmd.Context())
			if !a.coordinator.Login(cmd.Context(), input.Email, input.Password) {
				return ErrReported
			}
			a.coordinator.Wait()

			return writeIdentity(cmd.OutOrStdout(), identityOf(a.coordinator.State()), outputText)
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password (prompted if omitted)")

	return cmd
}

func newSignUpCmd() *cobra.Command {
	var input credentials

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a member account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := credentialForm{email: true, password: true, fullName: true, confirmPassword: true}
			if err := promptCredentials(&input, form); err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			a.start(cmd.Context())
			if !a.coordinator.SignUp(cmd.Context(), input.Email, input.Password, input.FullName) {
				return ErrReported
			}
			a.coordinator.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().StringVar(&input.FullName, "name", "", "full name")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if state := a.start(cmd.Context()); !state.IsAuthenticated {
				cmd.Println("Not signed in.")
				return nil
			}

			if !a.coordinator.Logout(cmd.Context()) {
				return ErrReported
			}
			cmd.Println("Signed out.")
			return nil
		},
	}
}
