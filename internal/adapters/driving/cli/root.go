// Package cli implements the gdevutils command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elemental-reasoning/gdevutils/gcal"
	"github.com/elemental-reasoning/gdevutils/gdrive"
	"github.com/elemental-reasoning/gdevutils/gsheets"
	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/auth"
	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/config/file"
	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/storage/sqlite"
	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	flagVerbose    bool
	flagAccount    string
	flagKeyFile    string
	flagSubject    string
	flagConfigDir  string
	flagDataDir    string
	flagCalendarID string
)

// Shared stores, initialised on demand.
var (
	configStore *file.ConfigStore
	credStore   *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "gdevutils",
	Short: "Work with Google Calendar, Drive, and Sheets from the terminal",
	Long: `gdevutils wraps the Google Calendar, Drive, and Sheets APIs behind a
single authenticated session with rate limiting and retry handling.

Authenticate once with 'gdevutils auth login' (or point --key-file at a
service account key), then use the calendar, drive, and sheets commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagAccount, "account", "", "Account to act as (defaults to the configured account)")
	rootCmd.PersistentFlags().StringVar(&flagKeyFile, "key-file", "", "Service account key file (JSON)")
	rootCmd.PersistentFlags().StringVar(&flagSubject, "subject", "", "Subject to impersonate with a service account key")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Config directory (default ~/.gdevutils)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default ~/.gdevutils/data)")
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

// ensureConfig opens the TOML config store.
func ensureConfig() (*file.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	store, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	configStore = store
	return store, nil
}

// ensureCredStore opens the SQLite credential store.
func ensureCredStore() (*sqlite.Store, error) {
	if credStore != nil {
		return credStore, nil
	}
	store, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	credStore = store
	return store, nil
}

// oauthConfig assembles the OAuth app configuration from config keys.
func oauthConfig(cfg *file.ConfigStore) auth.Config {
	return auth.Config{
		ClientID:     cfg.GetString("auth.client_id"),
		ClientSecret: cfg.GetString("auth.client_secret"),
	}
}

// currentAccount resolves the account to act as: the --account flag
// first, then the configured default.
func currentAccount(cfg *file.ConfigStore) string {
	if flagAccount != "" {
		return flagAccount
	}
	return cfg.GetString("account")
}

// buildSession constructs an authenticated session. A service account
// key takes precedence; otherwise the stored OAuth credential for the
// current account is used.
func buildSession(ctx context.Context, scopes ...string) (*session.Session, error) {
	cfg, err := ensureConfig()
	if err != nil {
		return nil, err
	}

	keyFile := flagKeyFile
	if keyFile == "" {
		keyFile = cfg.GetString("auth.key_file")
	}
	if keyFile != "" {
		subject := flagSubject
		if subject == "" {
			subject = cfg.GetString("auth.subject")
		}
		logger.Debug("authenticating with service account key %s", keyFile)
		return session.NewServiceAccountSession(ctx, keyFile, subject, scopes...)
	}

	account := currentAccount(cfg)
	if account == "" {
		return nil, errors.New("no account configured: run 'gdevutils auth login' first")
	}

	store, err := ensureCredStore()
	if err != nil {
		return nil, err
	}
	cred, err := store.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, fmt.Errorf("no stored credential for %s: run 'gdevutils auth login'", account)
		}
		return nil, err
	}

	provider := auth.NewStoredTokenProvider(cred.ID, store, oauthConfig(cfg))
	return session.NewOAuthSession(ctx, provider), nil
}

// calendarClient builds a calendar client over a fresh session.
func calendarClient(ctx context.Context) (*gcal.Client, error) {
	sess, err := buildSession(ctx, session.ScopeCalendar)
	if err != nil {
		return nil, err
	}
	client, err := gcal.New(ctx, sess)
	if err != nil {
		return nil, err
	}
	if flagCalendarID != "" {
		id, err := client.CalendarIDByName(ctx, flagCalendarID)
		if err != nil {
			return nil, err
		}
		client.SetCalendar(id)
	}
	return client, nil
}

// driveClient builds a Drive client over a fresh session.
func driveClient(ctx context.Context) (*gdrive.Client, error) {
	sess, err := buildSession(ctx, session.ScopeDrive)
	if err != nil {
		return nil, err
	}
	return gdrive.New(ctx, sess)
}

// sheetsService builds a Sheets service over a fresh session.
func sheetsService(ctx context.Context) (*gsheets.Service, error) {
	sess, err := buildSession(ctx, session.ScopeSheets, session.ScopeDrive)
	if err != nil {
		return nil, err
	}
	return gsheets.New(ctx, sess)
}
