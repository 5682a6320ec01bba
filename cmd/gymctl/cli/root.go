// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements the gymctl command tree.

Every command builds one [session.Coordinator] over the REST backing service,
runs a single auth operation and exits. The session and the advisory cache
persist between invocations in a local SQLite file under the state directory.

# Configuration

Settings are read, highest precedence first, from flags, GYMCTL_* environment
variables and ~/.uptowngym/gymctl.yaml:

	api_url:      https://api.uptowngym.rw
	state_dir:    ~/.uptowngym
	cache_url:    redis://frontdesk-cache:6379/0   # optional, shared kiosk cache
	redirect_to:  https://app.uptowngym.rw/reset-password
	admin_emails: [admin@uptowngym.rw]
	debug:        false
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrReported is returned by commands whose failure was already shown to the user.
var ErrReported = errors.New("gymctl: failure already reported")

var cfgFile string

// Execute builds the command tree and runs it.
func Execute(context context.Context, version string) error {
	return newRootCmd(version).ExecuteContext(context)
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gymctl",
		Short: "Sign in to Uptown Gym from the terminal",
		Long: `gymctl keeps an Uptown Gym session on this machine.

Sign in once with "gymctl login"; later commands reuse and refresh the stored
session until "gymctl logout".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.uptowngym/gymctl.yaml)")
	flags.String("api-url", defaultAPIURL, "backing service base URL")
	flags.String("state", "", "state directory for the session and cache (default: ~/.uptowngym)")
	flags.String("cache-url", "", "redis URL of a shared advisory cache")
	flags.Bool("debug", false, "log debug output to stderr")

	_ = viper.BindPFlag(keyAPIURL, flags.Lookup("api-url"))
	_ = viper.BindPFlag(keyStateDir, flags.Lookup("state"))
	_ = viper.BindPFlag(keyCacheURL, flags.Lookup("cache-url"))
	_ = viper.BindPFlag(keyDebug, flags.Lookup("debug"))

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newSignUpCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoAmICmd())
	cmd.AddCommand(newResetPasswordCmd())
	cmd.AddCommand(newUpdatePasswordCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// initConfig loads the config file into viper. The default file is optional;
// an explicit --config path must exist and parse.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gymctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.uptowngym")
	}

	viper.SetEnvPrefix("GYMCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read_config: %w", err)
		}
	}
	return nil
}
