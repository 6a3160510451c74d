package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/auth"
	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/storage/sqlite"
	"github.com/elemental-reasoning/gdevutils/internal/adapters/driving/oauth"
	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

const loginTimeout = 3 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google account credentials",
	Long: `Authenticate against Google and manage stored credentials.

'auth login' runs the OAuth authorization code flow with PKCE in your
browser and stores the resulting tokens locally. The OAuth client ID and
secret come from the config file (auth.client_id, auth.client_secret) or
are prompted for on first login.

Examples:
  gdevutils auth login
  gdevutils auth login --scopes readonly
  gdevutils auth status
  gdevutils auth logout user@example.com`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate a Google account and store its credential",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored credentials",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout [account]",
	Short: "Remove a stored credential",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthLogout,
}

var authLoginScopes string

func init() {
	authLoginCmd.Flags().StringVar(
		&authLoginScopes, "scopes", "readwrite", "Scope set to request (readonly, readwrite)")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := ensureConfig()
	if err != nil {
		return err
	}
	store, err := ensureCredStore()
	if err != nil {
		return err
	}

	oauthCfg := oauthConfig(cfg)
	if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
		oauthCfg, err = promptOAuthApp(cmd, cfg)
		if err != nil {
			return err
		}
	}

	scopes, err := scopesForSet(authLoginScopes)
	if err != nil {
		return err
	}

	token, err := authorize(ctx, cmd, oauthCfg, scopes)
	if err != nil {
		return err
	}

	info, err := session.GetUserInfo(ctx, token.AccessToken)
	if err != nil {
		return fmt.Errorf("fetching account profile: %w", err)
	}

	cred := sqlite.Credential{
		ID:      uuid.New().String(),
		Account: info.Email,
		Scopes:  scopes,
		OAuth:   token,
	}
	if err := store.Save(ctx, cred); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	if cfg.GetString("account") == "" {
		if err := cfg.Set("account", info.Email); err != nil {
			logger.Warn("could not save default account: %v", err)
		}
	}

	cmd.Println(successStyle.Render("Logged in as " + info.Email))
	return nil
}

// authorize runs the browser-based authorization code flow with PKCE
// and returns the exchanged token.
func authorize(
	ctx context.Context,
	cmd *cobra.Command,
	cfg auth.Config,
	scopes []string,
) (*sqlite.OAuthToken, error) {
	state, err := oauth.GenerateState()
	if err != nil {
		return nil, err
	}
	verifier, err := oauth.GenerateCodeVerifier()
	if err != nil {
		return nil, err
	}
	challenge := oauth.GenerateCodeChallenge(verifier)

	srv := oauth.NewCallbackServer(0, state)
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}
	defer srv.Stop() //nolint:errcheck

	authURL := buildAuthURL(cfg, srv.RedirectURI(), state, challenge, scopes)

	cmd.Println("Opening your browser to complete authentication...")
	if err := oauth.OpenBrowser(authURL); err != nil {
		logger.Debug("could not open browser: %v", err)
		cmd.Println("Visit this URL to authorize:")
		cmd.Println(mutedStyle.Render(authURL))
	}

	code, err := srv.WaitForCode(loginTimeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for authorization: %w", err)
	}

	token, err := auth.ExchangeCode(ctx, cfg, code, verifier, srv.RedirectURI())
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// buildAuthURL assembles the Google authorization URL for the PKCE flow.
func buildAuthURL(cfg auth.Config, redirectURI, state, challenge string, scopes []string) string {
	params := url.Values{}
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(scopes, " "))
	params.Set("state", state)
	params.Set("code_challenge", challenge)
	params.Set("code_challenge_method", "S256")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	return auth.GoogleAuthURL + "?" + params.Encode()
}

// promptOAuthApp asks for the OAuth client credentials and persists
// them in the config file for subsequent logins.
func promptOAuthApp(cmd *cobra.Command, cfg configSetter) (auth.Config, error) {
	cmd.Println("No OAuth app configured. Create a desktop OAuth client in the")
	cmd.Println("Google Cloud console and enter its credentials below.")
	cmd.Println()

	cmd.Print("Client ID: ")
	var clientID string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &clientID); err != nil {
		return auth.Config{}, errors.New("client ID is required")
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return auth.Config{}, errors.New("client ID is required")
	}

	clientSecret, err := readSecret(cmd, "Client secret: ")
	if err != nil {
		return auth.Config{}, err
	}
	if clientSecret == "" {
		return auth.Config{}, errors.New("client secret is required")
	}

	if err := cfg.Set("auth.client_id", clientID); err != nil {
		return auth.Config{}, fmt.Errorf("saving config: %w", err)
	}
	if err := cfg.Set("auth.client_secret", clientSecret); err != nil {
		return auth.Config{}, fmt.Errorf("saving config: %w", err)
	}

	return auth.Config{ClientID: clientID, ClientSecret: clientSecret}, nil
}

// configSetter is the slice of the config store the login prompt needs.
type configSetter interface {
	Set(key string, value any) error
}

// readSecret reads a value without echo when attached to a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	var value string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &value); err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// scopesForSet maps a named scope set to the OAuth scopes it grants.
func scopesForSet(set string) ([]string, error) {
	switch strings.ToLower(set) {
	case "readonly":
		return session.ReadonlyScopes, nil
	case "readwrite", "":
		return session.ReadWriteScopes, nil
	default:
		return nil, fmt.Errorf("unknown scope set %q (expected readonly or readwrite)", set)
	}
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	store, err := ensureCredStore()
	if err != nil {
		return err
	}
	creds, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing credentials: %w", err)
	}

	if len(creds) == 0 {
		cmd.Println("No stored credentials.")
		cmd.Println("Authenticate with: gdevutils auth login")
		return nil
	}

	cfg, err := ensureConfig()
	if err != nil {
		return err
	}
	defaultAccount := cfg.GetString("account")

	cmd.Println(titleStyle.Render("Stored credentials"))
	cmd.Println()
	for _, cred := range creds {
		marker := " "
		if cred.Account == defaultAccount {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, headerStyle.Render(cred.Account))
		if cred.OAuth != nil {
			status := successStyle.Render("valid")
			if cred.OAuth.IsExpired() {
				status = warningStyle.Render("expired (refreshed on next use)")
			}
			cmd.Printf("    Token: %s\n", status)
		}
		cmd.Printf("    Scopes: %s\n", mutedStyle.Render(strings.Join(cred.Scopes, ", ")))
		cmd.Printf("    Updated: %s\n", cred.UpdatedAt.Format(time.RFC3339))
		cmd.Println()
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := ensureConfig()
	if err != nil {
		return err
	}
	account := cfg.GetString("account")
	if len(args) > 0 {
		account = args[0]
	}
	if account == "" {
		return errors.New("no account specified and none configured")
	}

	store, err := ensureCredStore()
	if err != nil {
		return err
	}
	if _, err := store.GetByAccount(ctx, account); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return fmt.Errorf("no stored credential for %s", account)
		}
		return err
	}
	if err := store.DeleteByAccount(ctx, account); err != nil {
		return fmt.Errorf("removing credential: %w", err)
	}

	if cfg.GetString("account") == account {
		if err := cfg.Set("account", ""); err != nil {
			logger.Warn("could not clear default account: %v", err)
		}
	}

	cmd.Printf("Logged out %s\n", account)
	return nil
}
