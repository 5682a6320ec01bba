// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoAmICmd() *cobra.Command {
	var (
		output     string
		checkAdmin bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and its role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.start(cmd.Context())
			if refresh && state.IsAuthenticated {
				// A rejected refresh token signs out; the coordinator hears about it.
				if _, err := a.client.RefreshSession(cmd.Context()); err != nil {
					return fmt.Errorf("refresh_session: %w", err)
				}
				a.coordinator.Wait()
				state = a.coordinator.State()
			}

			view := identityOf(state)
			if checkAdmin && view.Authenticated {
				verified := a.coordinator.CheckAdmin(cmd.Context())
				view.AdminVerified = &verified
			}

			if err := writeIdentity(cmd.OutOrStdout(), view, output); err != nil {
				return err
			}
			if !view.Authenticated {
				return ErrReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&checkAdmin, "check-admin", false, "re-check admin status against the stored profile")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "exchange the refresh token for a new access token first")

	return cmd
}
