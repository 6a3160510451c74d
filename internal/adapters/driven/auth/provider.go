// Package auth provides OAuth access tokens backed by the credential
// store, refreshing them against the Google token endpoint as needed.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/storage/sqlite"
	"github.com/elemental-reasoning/gdevutils/internal/logger"
)

// Google OAuth 2.0 endpoints.
const (
	GoogleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	GoogleTokenURL = "https://oauth2.googleapis.com/token"
)

// Config identifies the OAuth application.
type Config struct {
	ClientID     string
	ClientSecret string

	// TokenURL overrides the Google token endpoint. Used in tests.
	TokenURL string
}

func (c Config) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return GoogleTokenURL
}

// StoredTokenProvider serves access tokens for one stored credential,
// refreshing and saving them back when they expire.
type StoredTokenProvider struct {
	credentialID string
	store        *sqlite.Store
	config       Config

	mu            sync.RWMutex
	account       string
	cachedToken   string
	cacheExpiry   time.Time
	refreshBuffer time.Duration
}

// NewStoredTokenProvider creates a token provider for a stored
// credential.
func NewStoredTokenProvider(credentialID string, store *sqlite.Store, config Config) *StoredTokenProvider {
	return &StoredTokenProvider{
		credentialID:  credentialID,
		store:         store,
		config:        config,
		refreshBuffer: 5 * time.Minute,
	}
}

// Account returns the account identifier of the underlying credential.
func (p *StoredTokenProvider) Account() string {
	p.mu.RLock()
	if p.account != "" {
		account := p.account
		p.mu.RUnlock()
		return account
	}
	p.mu.RUnlock()

	cred, err := p.store.Get(context.Background(), p.credentialID)
	if err != nil {
		return ""
	}

	p.mu.Lock()
	p.account = cred.Account
	p.mu.Unlock()
	return cred.Account
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *StoredTokenProvider) GetToken(ctx context.Context) (string, error) {
	// Fast path: check cache with read lock
	p.mu.RLock()
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	cred, err := p.store.Get(ctx, p.credentialID)
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}
	if cred.OAuth == nil {
		return "", fmt.Errorf("credential %s has no OAuth tokens", p.credentialID)
	}
	p.account = cred.Account

	needsRefresh := cred.OAuth.IsExpired()
	if !cred.OAuth.Expiry.IsZero() {
		needsRefresh = needsRefresh || time.Until(cred.OAuth.Expiry) < p.refreshBuffer
	}

	if needsRefresh && cred.OAuth.RefreshToken != "" {
		newToken, err := RefreshToken(ctx, p.config, cred.OAuth.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("refresh token: %w", err)
		}

		cred.OAuth.AccessToken = newToken.AccessToken
		if newToken.RefreshToken != "" {
			cred.OAuth.RefreshToken = newToken.RefreshToken
		}
		cred.OAuth.Expiry = newToken.Expiry
		cred.OAuth.TokenType = newToken.TokenType

		if err := p.store.Save(ctx, *cred); err != nil {
			return "", fmt.Errorf("save refreshed credential: %w", err)
		}
		logger.Debug("refreshed access token for %s", cred.Account)
	}

	p.cachedToken = cred.OAuth.AccessToken

	if !cred.OAuth.Expiry.IsZero() {
		p.cacheExpiry = cred.OAuth.Expiry.Add(-p.refreshBuffer)
	} else {
		p.cacheExpiry = time.Now().Add(1 * time.Hour)
	}

	return p.cachedToken, nil
}

// InvalidateCache clears the cached token.
func (p *StoredTokenProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}

// RefreshToken exchanges a refresh token for a new access token.
func RefreshToken(ctx context.Context, config Config, refreshToken string) (*sqlite.OAuthToken, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", config.ClientID)
	data.Set("client_secret", config.ClientSecret)

	return tokenRequest(ctx, config.tokenURL(), data)
}

// ExchangeCode exchanges an authorization code for tokens, completing
// the PKCE flow.
func ExchangeCode(ctx context.Context, config Config, code, verifier, redirectURI string) (*sqlite.OAuthToken, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("code_verifier", verifier)
	data.Set("redirect_uri", redirectURI)
	data.Set("client_id", config.ClientID)
	data.Set("client_secret", config.ClientSecret)

	return tokenRequest(ctx, config.tokenURL(), data)
}

func tokenRequest(ctx context.Context, tokenURL string, data url.Values) (*sqlite.OAuthToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}

	return &sqlite.OAuthToken{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenResp.TokenType,
		Expiry:       time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}
