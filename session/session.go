package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/elemental-reasoning/gdevutils/internal/logger"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// RetryPolicy controls how Session.Do retries failed requests.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry of a transient error.
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy is used by sessions unless overridden.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:    4,
	InitialBackoff: 500 * time.Millisecond,
	MaxBackoff:     16 * time.Second,
}

// Session is the shared credential and request layer for the service
// wrappers. It is safe for concurrent use.
type Session struct {
	ts    oauth2.TokenSource
	retry RetryPolicy

	mu       sync.Mutex
	limiters map[Service]*RateLimiter
}

// NewSession creates a Session from an existing token source.
func NewSession(ts oauth2.TokenSource) *Session {
	return &Session{
		ts:       ts,
		retry:    DefaultRetryPolicy,
		limiters: make(map[Service]*RateLimiter),
	}
}

// NewServiceAccountSession creates a Session from a service account key
// file. When subject is non-empty the service account impersonates that
// user, which requires domain-wide delegation for the requested scopes.
func NewServiceAccountSession(ctx context.Context, keyFile, subject string, scopes ...string) (*Session, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	cfg.Subject = subject

	logger.Debug("service account session for %s (subject %q)", cfg.Email, subject)
	return NewSession(cfg.TokenSource(ctx)), nil
}

// NewOAuthSession creates a Session backed by stored user tokens.
// The provider refreshes and persists tokens as needed.
func NewOAuthSession(ctx context.Context, provider TokenProvider) *Session {
	return NewSession(NewTokenSource(ctx, provider))
}

// TokenSource exposes the underlying token source, for callers that build
// their own API clients.
func (s *Session) TokenSource() oauth2.TokenSource {
	return s.ts
}

// SetRetryPolicy overrides the retry policy.
func (s *Session) SetRetryPolicy(p RetryPolicy) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	s.retry = p
}

// SetRateLimit overrides the rate limit for one service.
func (s *Session) SetRateLimit(svc Service, cfg RateLimitConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[svc] = NewRateLimiterWithConfig(cfg)
}

// Limiter returns the rate limiter for a service, creating it on first use.
func (s *Session) Limiter(svc Service) *RateLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[svc]
	if !ok {
		l = NewRateLimiter(svc)
		s.limiters[svc] = l
	}
	return l
}

// Do runs an API call with rate limiting and retries.
//
// The limiter for svc is waited on before every attempt. Throttling errors
// open a backoff window sized from the Retry-After header; transient (5xx
// and network) errors back off exponentially with jitter. Auth and
// permanent errors are returned immediately.
func (s *Session) Do(ctx context.Context, svc Service, call func() error) error {
	limiter := s.Limiter(svc)
	backoff := s.retry.InitialBackoff

	var err error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if werr := limiter.Wait(ctx); werr != nil {
			return werr
		}

		err = call()
		switch Classify(err) {
		case ClassNone:
			return nil
		case ClassRateLimit:
			limiter.RecordThrottle(RetryAfter(err))
			logger.Warn("%s: throttled by provider (attempt %d/%d)", svc, attempt, s.retry.MaxAttempts)
		case ClassTransient:
			logger.Debug("%s: transient failure, retrying in %s: %v", svc, backoff, err)
			if attempt < s.retry.MaxAttempts {
				if serr := sleep(ctx, jitter(backoff)); serr != nil {
					return serr
				}
				backoff = min(backoff*2, s.retry.MaxBackoff)
			}
		default:
			return err
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", svc, s.retry.MaxAttempts, err)
}

// Calendar builds a Google Calendar API client over this session.
func (s *Session) Calendar(ctx context.Context) (*calendar.Service, error) {
	return calendar.NewService(ctx, option.WithTokenSource(s.ts))
}

// Drive builds a Google Drive API client over this session.
func (s *Session) Drive(ctx context.Context) (*drive.Service, error) {
	return drive.NewService(ctx, option.WithTokenSource(s.ts))
}

// Sheets builds a Google Sheets API client over this session.
func (s *Session) Sheets(ctx context.Context) (*sheets.Service, error) {
	return sheets.NewService(ctx, option.WithTokenSource(s.ts))
}

// UserInfo contains the authenticated account's basic profile.
type UserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GetUserInfo fetches the profile of the account behind an access token.
// The email serves as the account identifier in the credentials store.
func GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	return getUserInfoFrom(ctx, userInfoURL, accessToken)
}

func getUserInfoFrom(ctx context.Context, endpoint, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d", resp.StatusCode)
	}

	var userInfo UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &userInfo, nil
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// jitter spreads a backoff over [d/2, d) to avoid thundering herds.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)))
}
