// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"github.com/spf13/cobra"
)

func newResetPasswordCmd() *cobra.Command {
	var input credentials

	cmd := &cobra.Command{
		Use:   "reset-password [email]",
		Short: "Email a password reset link",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				input.Email = args[0]
			}
			if err := promptCredentials(&input, credentialForm{email: true}); err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.coordinator.RequestPasswordReset(cmd.Context(), input.Email) {
				return ErrReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "account email")

	return cmd
}

func newUpdatePasswordCmd() *cobra.Command {
	var input credentials

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Change the password of the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if state := a.start(cmd.Context()); !state.IsAuthenticated {
				cmd.PrintErrln("Not signed in. Run \"gymctl login\" first.")
				return ErrReported
			}

			form := credentialForm{password: true, confirmPassword: true, passwordTitle: "New password"}
			if err := promptCredentials(&input, form); err != nil {
				return err
			}

			if !a.coordinator.UpdatePassword(cmd.Context(), input.Password) {
				return ErrReported
			}
			a.coordinator.Wait()
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Password, "new-password", "", "new password (prompted if omitted)")

	return cmd
}
