// Package session provides the shared credential and request layer used by
// the gcal, gdrive, and gsheets packages.
//
// A Session owns three things:
//   - an oauth2.TokenSource (service account key or stored user tokens)
//   - a rate limiter per Google service, respecting quota backoff
//   - the retry policy applied to every authorised request
//
// # Usage
//
// Service account with domain-wide delegation:
//
//	sess, err := session.NewServiceAccountSession(ctx, keyFile, "events@example.org",
//		session.ScopeCalendarReadonly)
//	svc, err := sess.Calendar(ctx)
//
// User OAuth, with tokens managed by a TokenProvider:
//
//	sess := session.NewOAuthSession(ctx, provider)
//
// Requests made through Session.Do are rate limited and retried: 429 and
// quota errors trigger a backoff window, 5xx responses are retried with
// exponential backoff, and all other 4xx responses are returned immediately.
package session
