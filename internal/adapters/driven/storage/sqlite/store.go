package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/elemental-reasoning/gdevutils/internal/adapters/driven/storage/sqlite/migrations"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// ErrNotFound indicates the requested credential does not exist.
var ErrNotFound = errors.New("sqlite: credential not found")

// ErrInvalidInput indicates a credential missing required fields.
var ErrInvalidInput = errors.New("sqlite: invalid credential")

// OAuthToken holds the tokens issued for one user account.
type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// IsExpired reports whether the access token has passed its expiry,
// with a small margin so a token about to lapse counts as expired.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry.Add(-30 * time.Second))
}

// Credential is one stored account authorization.
type Credential struct {
	ID      string
	Account string
	Scopes  []string
	OAuth   *OAuthToken

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NeedsRefresh reports whether the credential's access token has
// expired but can be refreshed.
func (c *Credential) NeedsRefresh() bool {
	if c.OAuth == nil {
		return false
	}
	return c.OAuth.IsExpired() && c.OAuth.RefreshToken != ""
}

// Store is the SQLite-backed credential store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the credential store at the specified data directory.
// If dataDir is empty, defaults to ~/.gdevutils/data/credentials.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".gdevutils", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "credentials.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or updates a credential.
func (s *Store) Save(ctx context.Context, cred Credential) error {
	if cred.ID == "" || cred.Account == "" {
		return ErrInvalidInput
	}

	oauthJSON, err := json.Marshal(cred.OAuth)
	if err != nil {
		return fmt.Errorf("marshalling oauth token: %w", err)
	}
	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return fmt.Errorf("marshalling scopes: %w", err)
	}

	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (id, account, scopes, oauth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account = excluded.account,
			scopes = excluded.scopes,
			oauth = excluded.oauth,
			updated_at = excluded.updated_at
	`, cred.ID, cred.Account, string(scopesJSON), string(oauthJSON),
		cred.CreatedAt, cred.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Get retrieves a credential by ID.
func (s *Store) Get(ctx context.Context, id string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account, scopes, oauth, created_at, updated_at
		FROM credentials WHERE id = ?
	`, id)
	return scanCredential(row.Scan)
}

// GetByAccount retrieves the credential for an account identifier.
func (s *Store) GetByAccount(ctx context.Context, account string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account, scopes, oauth, created_at, updated_at
		FROM credentials WHERE account = ?
		ORDER BY updated_at DESC LIMIT 1
	`, account)
	return scanCredential(row.Scan)
}

// List returns all stored credentials, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account, scopes, oauth, created_at, updated_at
		FROM credentials ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	var creds []*Credential
	for rows.Next() {
		cred, err := scanCredential(rows.Scan)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// Delete removes a credential by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}

// DeleteByAccount removes every credential stored for an account.
func (s *Store) DeleteByAccount(ctx context.Context, account string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE account = ?", account)
	if err != nil {
		return fmt.Errorf("deleting credentials for account: %w", err)
	}
	return nil
}

// scanCredential scans a single credential row.
func scanCredential(scan func(dest ...any) error) (*Credential, error) {
	var cred Credential
	var scopesJSON, oauthJSON sql.NullString

	if err := scan(&cred.ID, &cred.Account, &scopesJSON, &oauthJSON,
		&cred.CreatedAt, &cred.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning credential: %w", err)
	}

	if scopesJSON.Valid && scopesJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(scopesJSON.String), &cred.Scopes); err != nil {
			return nil, fmt.Errorf("unmarshalling scopes: %w", err)
		}
	}
	if oauthJSON.Valid && oauthJSON.String != jsonNull {
		var token OAuthToken
		if err := json.Unmarshal([]byte(oauthJSON.String), &token); err != nil {
			return nil, fmt.Errorf("unmarshalling oauth token: %w", err)
		}
		cred.OAuth = &token
	}

	return &cred, nil
}
