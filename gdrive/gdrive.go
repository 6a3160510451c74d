// Package gdrive wraps the Google Drive API behind a session.Session.
// It covers the file discovery and creation operations the other wrappers
// build on, most notably listing files by MIME type.
package gdrive

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"

	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

// MIME types for Google Workspace files.
const (
	MimeTypeDoc    = "application/vnd.google-apps.document"
	MimeTypeSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeSlides = "application/vnd.google-apps.presentation"
	MimeTypeFolder = "application/vnd.google-apps.folder"
)

// listPageSize is the page size for file listing requests.
const listPageSize = 100

// listFields limits list responses to the fields callers actually use.
const listFields = "nextPageToken, files(id, name, mimeType, webViewLink, modifiedTime, trashed)"

// Client provides access to one account's Drive files.
type Client struct {
	svc  *drive.Service
	sess *session.Session
}

// New creates a Client over the given session.
func New(ctx context.Context, sess *session.Session) (*Client, error) {
	svc, err := sess.Drive(ctx)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewWithService(svc, sess), nil
}

// NewWithService creates a Client from an existing API client.
func NewWithService(svc *drive.Service, sess *session.Session) *Client {
	return &Client{svc: svc, sess: sess}
}

// FilesOfType returns every non-trashed file with the given MIME type.
func (c *Client) FilesOfType(ctx context.Context, mimeType string) ([]*drive.File, error) {
	return c.list(ctx, TypeQuery(mimeType))
}

// Files returns every non-trashed file visible to the account.
func (c *Client) Files(ctx context.Context) ([]*drive.File, error) {
	return c.list(ctx, "trashed = false")
}

func (c *Client) list(ctx context.Context, query string) ([]*drive.File, error) {
	logger.Debug("listing drive files: %s", query)

	var files []*drive.File
	pageToken := ""
	for {
		var page *drive.FileList
		err := c.sess.Do(ctx, session.ServiceDrive, func() error {
			var err error
			call := c.svc.Files.List().
				Q(query).
				PageSize(listPageSize).
				Fields(listFields).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		files = append(files, page.Files...)
		if page.NextPageToken == "" {
			if len(files) == 0 {
				logger.Info("no files found for query %q", query)
			}
			return files, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateFile creates a file with the given metadata. The name on the
// metadata wins over an empty name argument; an untitled file is created
// when both are empty.
func (c *Client) CreateFile(ctx context.Context, name string, meta *drive.File) (*drive.File, error) {
	if meta == nil {
		meta = &drive.File{}
	}
	if meta.Name == "" {
		meta.Name = name
	}
	if meta.Name == "" {
		meta.Name = "untitled"
	}

	var created *drive.File
	err := c.sess.Do(ctx, session.ServiceDrive, func() error {
		var err error
		created, err = c.svc.Files.Create(meta).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create file %q: %w", meta.Name, err)
	}

	logger.Debug("created file %s (%s)", created.Name, created.Id)
	return created, nil
}

// TypeQuery builds a Drive query matching non-trashed files of one MIME type.
func TypeQuery(mimeType string) string {
	return fmt.Sprintf("mimeType = '%s' and trashed = false", mimeType)
}
