package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("session: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions or a missing scope.
	ErrForbidden = errors.New("session: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("session: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("session: rate limit exceeded")

	// ErrQuotaExceeded indicates the daily API quota was exhausted.
	ErrQuotaExceeded = errors.New("session: quota exceeded")

	// ErrAuthDenied indicates the user denied the consent flow.
	ErrAuthDenied = errors.New("session: authorisation denied")
)

// Class describes how a failed request should be handled.
type Class int

const (
	// ClassNone means no error.
	ClassNone Class = iota
	// ClassAuth means credentials are invalid; re-authentication is required.
	ClassAuth
	// ClassRateLimit means the provider throttled the request; retry after backoff.
	ClassRateLimit
	// ClassTransient means a server-side failure; safe to retry.
	ClassTransient
	// ClassPermanent means the request itself is wrong; do not retry.
	ClassPermanent
)

// rateLimitReasons are googleapi error reasons that signal throttling even
// when the status code is 403 rather than 429.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// Classify maps an error from a Google API call to a Class.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	switch {
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrQuotaExceeded):
		return ClassRateLimit
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAuthDenied):
		return ClassAuth
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		// Network level failures (connection reset, DNS) are retryable.
		return ClassTransient
	}

	switch {
	case gerr.Code == http.StatusTooManyRequests:
		return ClassRateLimit
	case gerr.Code == http.StatusForbidden && hasRateLimitReason(gerr):
		return ClassRateLimit
	case gerr.Code == http.StatusUnauthorized:
		return ClassAuth
	case gerr.Code >= 500:
		return ClassTransient
	default:
		return ClassPermanent
	}
}

func hasRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}

// IsRateLimited returns true if the error indicates throttling.
func IsRateLimited(err error) bool {
	return Classify(err) == ClassRateLimit
}

// IsTransient returns true if the error is safe to retry.
func IsTransient(err error) bool {
	return Classify(err) == ClassTransient
}

// IsPermanent returns true if retrying the same request cannot succeed.
func IsPermanent(err error) bool {
	return Classify(err) == ClassPermanent
}

// IsAuth returns true if the error indicates invalid credentials.
func IsAuth(err error) bool {
	return Classify(err) == ClassAuth
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

// WrapError converts a Google API error to the matching sentinel error.
// Errors that have no sentinel are returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		if hasRateLimitReason(gerr) {
			return ErrRateLimited
		}
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return err
	}
}

// RetryAfter extracts the server-requested backoff from a throttling error.
// Returns 0 when the response carried no Retry-After header.
func RetryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	val := gerr.Header.Get("Retry-After")
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	// Retry-After may also be an HTTP date.
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
