// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Setting Keys

const (
	keyAPIURL      = "api_url"
	keyStateDir    = "state_dir"
	keyCacheURL    = "cache_url"
	keyRedirectTo  = "redirect_to"
	keyAdminEmails = "admin_emails"
	keyDebug       = "debug"

	defaultAPIURL     = "https://api.uptowngym.rw"
	defaultStateDir   = ".uptowngym"
	defaultRedirectTo = "https://app.uptowngym.rw/reset-password"
)

// settings is the resolved configuration of one invocation.
type settings struct {
	APIURL      string
	StateDir    string
	CacheURL    string
	RedirectTo  string
	AdminEmails []string
	Debug       bool
}

// loadSettings reads the merged viper configuration and fills defaults.
func loadSettings() (settings, error) {
	current := settings{
		APIURL:      viper.GetString(keyAPIURL),
		StateDir:    viper.GetString(keyStateDir),
		CacheURL:    viper.GetString(keyCacheURL),
		RedirectTo:  viper.GetString(keyRedirectTo),
		AdminEmails: viper.GetStringSlice(keyAdminEmails),
		Debug:       viper.GetBool(keyDebug),
	}

	if current.APIURL == "" {
		current.APIURL = defaultAPIURL
	}
	if parsed, err := url.Parse(current.APIURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return settings{}, fmt.Errorf("invalid api_url %q", current.APIURL)
	}

	if current.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return settings{}, fmt.Errorf("resolve_home_dir: %w", err)
		}
		current.StateDir = filepath.Join(home, defaultStateDir)
	}

	if current.RedirectTo == "" {
		current.RedirectTo = defaultRedirectTo
	}
	if len(current.AdminEmails) == 0 {
		current.AdminEmails = sec.DefaultAdminEmails
	}

	return current, nil
}
