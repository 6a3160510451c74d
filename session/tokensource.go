package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider supplies access tokens for authorised API calls.
// Implementations are expected to refresh expired tokens transparently and
// persist the result, so the user is not re-prompted on every invocation.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing it if expired.
	GetToken(ctx context.Context) (string, error)

	// Account returns the account identifier (usually an email address)
	// the tokens belong to. Empty when unknown.
	Account() string
}

// tokenSourceAdapter bridges a TokenProvider to oauth2.TokenSource so the
// Google API clients can use it via option.WithTokenSource.
type tokenSourceAdapter struct {
	provider TokenProvider
	ctx      context.Context
}

// NewTokenSource wraps a TokenProvider as an oauth2.TokenSource.
func NewTokenSource(ctx context.Context, provider TokenProvider) oauth2.TokenSource {
	return &tokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
func (t *tokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
