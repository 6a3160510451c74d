package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// fastSession returns a session whose retries complete in milliseconds.
func fastSession() *Session {
	s := NewSession(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"}))
	s.SetRetryPolicy(RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
	s.SetRateLimit(ServiceDrive, RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
	return s
}

func TestDo_SuccessFirstAttempt(t *testing.T) {
	s := fastSession()

	calls := 0
	err := s.Do(context.Background(), ServiceDrive, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransient(t *testing.T) {
	s := fastSession()

	calls := 0
	err := s.Do(context.Background(), ServiceDrive, func() error {
		calls++
		if calls < 3 {
			return &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	s := fastSession()

	calls := 0
	err := s.Do(context.Background(), ServiceDrive, func() error {
		calls++
		return &googleapi.Error{Code: http.StatusInternalServerError}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsTransient(err))
}

func TestDo_PermanentNotRetried(t *testing.T) {
	s := fastSession()

	calls := 0
	err := s.Do(context.Background(), ServiceDrive, func() error {
		calls++
		return &googleapi.Error{Code: http.StatusBadRequest}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsPermanent(err))
}

func TestDo_AuthNotRetried(t *testing.T) {
	s := fastSession()

	calls := 0
	err := s.Do(context.Background(), ServiceDrive, func() error {
		calls++
		return &googleapi.Error{Code: http.StatusUnauthorized}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, IsAuth(err))
}

func TestDo_ThrottleOpensBackoffWindow(t *testing.T) {
	s := fastSession()

	calls := 0
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Do(ctx, ServiceDrive, func() error {
		calls++
		return &googleapi.Error{Code: http.StatusTooManyRequests}
	})

	// The first 429 opens a 60s window, so the second attempt blocks on the
	// limiter until the context expires.
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	s := fastSession()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := s.Do(ctx, ServiceDrive, func() error {
		calls++
		cancel()
		return &googleapi.Error{Code: http.StatusBadGateway}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLimiter_ReusedPerService(t *testing.T) {
	s := NewSession(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test"}))

	first := s.Limiter(ServiceSheets)
	second := s.Limiter(ServiceSheets)
	assert.Same(t, first, second)

	other := s.Limiter(ServiceCalendar)
	assert.NotSame(t, first, other)
}

func TestNewServiceAccountSession_MissingKeyFile(t *testing.T) {
	_, err := NewServiceAccountSession(context.Background(), "/nonexistent/key.json", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account key")
}

func TestGetUserInfo(t *testing.T) {
	t.Run("decodes profile", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(UserInfo{Email: "events@example.org", VerifiedEmail: true})
		}))
		defer srv.Close()

		info, err := getUserInfoFrom(context.Background(), srv.URL, "tok")
		require.NoError(t, err)
		assert.Equal(t, "events@example.org", info.Email)
		assert.True(t, info.VerifiedEmail)
	})

	t.Run("401 maps to ErrUnauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := getUserInfoFrom(context.Background(), srv.URL, "tok")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
