// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/uptowngym/internal/session"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow auth state changes until interrupted",
		Long: `Keep the session alive, refreshing the access token before it expires,
and print every auth state change and login or logout transition.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := &statePrinter{out: cmd.OutOrStdout()}

			a, err := openApp(cmd.Context(), cmd.OutOrStdout(), appOptions{
				autoRefresh:  true,
				onTransition: printer.transition,
			})
			if err != nil {
				return err
			}
			defer a.Close()

			unsubscribe := a.coordinator.Subscribe(printer.state)
			defer unsubscribe()

			a.coordinator.Start(cmd.Context())
			<-cmd.Context().Done()
			return nil
		},
	}
}

// statePrinter writes state snapshots, dropping any older than the last one printed.
type statePrinter struct {
	mu         sync.Mutex
	out        io.Writer
	generation uint64
}

func (printer *statePrinter) state(state session.State) {
	printer.mu.Lock()
	defer printer.mu.Unlock()

	if state.Generation <= printer.generation {
		return
	}
	printer.generation = state.Generation
	fmt.Fprintln(printer.out, describeState(state))
}

func (printer *statePrinter) transition(transition session.Transition) {
	printer.mu.Lock()
	defer printer.mu.Unlock()

	line := fmt.Sprintf("%s  %s %s", time.Now().Format(time.TimeOnly), transition.Kind, transition.Phase)
	if transition.Err != nil {
		line += ": " + transition.Err.Error()
	}
	fmt.Fprintln(printer.out, messageStyle.Render(line))
}

func describeState(state session.State) string {
	line := fmt.Sprintf("%s  #%d %s", time.Now().Format(time.TimeOnly), state.Generation, state.Phase)
	if state.User != nil {
		line += fmt.Sprintf("  %s role=%s", state.User.Email, state.User.Role)
	}
	if state.IsAdmin {
		line += " " + adminStyle.Render("admin")
	}
	if state.IsLoading {
		line += " (loading)"
	}
	return line
}
