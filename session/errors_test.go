package session

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{
			name: "nil error",
			err:  nil,
			want: ClassNone,
		},
		{
			name: "429 is rate limited",
			err:  &googleapi.Error{Code: http.StatusTooManyRequests},
			want: ClassRateLimit,
		},
		{
			name: "403 with rateLimitExceeded reason is rate limited",
			err: &googleapi.Error{
				Code:   http.StatusForbidden,
				Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
			},
			want: ClassRateLimit,
		},
		{
			name: "403 with userRateLimitExceeded reason is rate limited",
			err: &googleapi.Error{
				Code:   http.StatusForbidden,
				Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}},
			},
			want: ClassRateLimit,
		},
		{
			name: "plain 403 is permanent",
			err:  &googleapi.Error{Code: http.StatusForbidden},
			want: ClassPermanent,
		},
		{
			name: "401 is auth",
			err:  &googleapi.Error{Code: http.StatusUnauthorized},
			want: ClassAuth,
		},
		{
			name: "404 is permanent",
			err:  &googleapi.Error{Code: http.StatusNotFound},
			want: ClassPermanent,
		},
		{
			name: "400 is permanent",
			err:  &googleapi.Error{Code: http.StatusBadRequest},
			want: ClassPermanent,
		},
		{
			name: "500 is transient",
			err:  &googleapi.Error{Code: http.StatusInternalServerError},
			want: ClassTransient,
		},
		{
			name: "503 is transient",
			err:  &googleapi.Error{Code: http.StatusServiceUnavailable},
			want: ClassTransient,
		},
		{
			name: "network error is transient",
			err:  errors.New("connection reset by peer"),
			want: ClassTransient,
		},
		{
			name: "sentinel rate limit",
			err:  ErrRateLimited,
			want: ClassRateLimit,
		},
		{
			name: "sentinel auth denied",
			err:  ErrAuthDenied,
			want: ClassAuth,
		},
		{
			name: "wrapped googleapi error",
			err:  wrapErr(&googleapi.Error{Code: http.StatusBadGateway}),
			want: ClassTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func wrapErr(err error) error {
	return errors.Join(errors.New("calling API"), err)
}

func TestClassHelpers(t *testing.T) {
	rateLimited := &googleapi.Error{Code: http.StatusTooManyRequests}
	transient := &googleapi.Error{Code: http.StatusBadGateway}
	permanent := &googleapi.Error{Code: http.StatusConflict}
	auth := &googleapi.Error{Code: http.StatusUnauthorized}

	assert.True(t, IsRateLimited(rateLimited))
	assert.False(t, IsRateLimited(transient))

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(permanent))

	assert.True(t, IsPermanent(permanent))
	assert.False(t, IsPermanent(auth))

	assert.True(t, IsAuth(auth))
	assert.False(t, IsAuth(rateLimited))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.False(t, IsNotFound(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, IsNotFound(nil))
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil passes through", err: nil, want: nil},
		{name: "401", err: &googleapi.Error{Code: http.StatusUnauthorized}, want: ErrUnauthorized},
		{name: "403", err: &googleapi.Error{Code: http.StatusForbidden}, want: ErrForbidden},
		{
			name: "403 quota",
			err: &googleapi.Error{
				Code:   http.StatusForbidden,
				Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}},
			},
			want: ErrRateLimited,
		},
		{name: "404", err: &googleapi.Error{Code: http.StatusNotFound}, want: ErrNotFound},
		{name: "429", err: &googleapi.Error{Code: http.StatusTooManyRequests}, want: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapError(tt.err))
		})
	}

	t.Run("unknown codes pass through", func(t *testing.T) {
		gerr := &googleapi.Error{Code: http.StatusTeapot}
		assert.Equal(t, gerr, WrapError(gerr))
	})

	t.Run("non-googleapi errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, WrapError(plain))
	})
}

func TestRetryAfter(t *testing.T) {
	t.Run("seconds header", func(t *testing.T) {
		gerr := &googleapi.Error{
			Code:   http.StatusTooManyRequests,
			Header: http.Header{"Retry-After": []string{"30"}},
		}
		assert.Equal(t, 30*time.Second, RetryAfter(gerr))
	})

	t.Run("missing header", func(t *testing.T) {
		gerr := &googleapi.Error{Code: http.StatusTooManyRequests}
		assert.Equal(t, time.Duration(0), RetryAfter(gerr))
	})

	t.Run("not a googleapi error", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), RetryAfter(errors.New("boom")))
	})

	t.Run("http date header", func(t *testing.T) {
		future := time.Now().Add(45 * time.Second).UTC().Format(http.TimeFormat)
		gerr := &googleapi.Error{
			Code:   http.StatusTooManyRequests,
			Header: http.Header{"Retry-After": []string{future}},
		}
		got := RetryAfter(gerr)
		assert.Greater(t, got, 40*time.Second)
		assert.LessOrEqual(t, got, 45*time.Second)
	})
}
