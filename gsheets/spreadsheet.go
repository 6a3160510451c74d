package gsheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/elemental-reasoning/gdevutils/gdrive"
	"github.com/elemental-reasoning/gdevutils/internal/logger"
	"github.com/elemental-reasoning/gdevutils/session"
)

// ErrSpreadsheetNotFound indicates no spreadsheet matched the requested name.
var ErrSpreadsheetNotFound = errors.New("gsheets: spreadsheet not found")

// Service provides access to one account's spreadsheets.
type Service struct {
	svc   *sheets.Service
	drive *gdrive.Client
	sess  *session.Session
}

// New creates a Service over the given session. The session must carry a
// Drive scope as well, since spreadsheet discovery goes through Drive.
func New(ctx context.Context, sess *session.Session) (*Service, error) {
	svc, err := sess.Sheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveClient, err := gdrive.New(ctx, sess)
	if err != nil {
		return nil, err
	}
	return NewWithServices(svc, driveClient, sess), nil
}

// NewWithServices creates a Service from existing API clients.
func NewWithServices(svc *sheets.Service, driveClient *gdrive.Client, sess *session.Session) *Service {
	return &Service{svc: svc, drive: driveClient, sess: sess}
}

// Spreadsheets returns the descriptors of every spreadsheet file the
// account can see.
func (s *Service) Spreadsheets(ctx context.Context) ([]*drive.File, error) {
	return s.drive.FilesOfType(ctx, gdrive.MimeTypeSheet)
}

// Find returns the ID of the spreadsheet named name.
func (s *Service) Find(ctx context.Context, name string) (string, error) {
	files, err := s.Spreadsheets(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if f.Name == name {
			return f.Id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
}

// Create creates an empty spreadsheet titled name and returns its ID.
func (s *Service) Create(ctx context.Context, name string) (string, error) {
	var created *sheets.Spreadsheet
	err := s.sess.Do(ctx, session.ServiceSheets, func() error {
		var err error
		created, err = s.svc.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{Title: name},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", name, err)
	}

	logger.Debug("created spreadsheet %q (%s)", name, created.SpreadsheetId)
	return created.SpreadsheetId, nil
}

// GetOrCreate returns the ID of the spreadsheet named name, creating it
// when absent.
func (s *Service) GetOrCreate(ctx context.Context, name string) (string, error) {
	id, err := s.Find(ctx, name)
	if errors.Is(err, ErrSpreadsheetNotFound) {
		return s.Create(ctx, name)
	}
	return id, err
}

// Open returns a Sheet over the spreadsheet named name, creating the
// spreadsheet when absent.
func (s *Service) Open(ctx context.Context, name string) (*Sheet, error) {
	id, err := s.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.OpenByID(id), nil
}

// OpenByID returns a Sheet over a known spreadsheet ID.
func (s *Service) OpenByID(spreadsheetID string) *Sheet {
	return &Sheet{
		service:       s,
		spreadsheetID: spreadsheetID,
	}
}

// OpenCached returns a CachedSheet over the spreadsheet named name,
// loading its full contents. The spreadsheet must already exist.
func (s *Service) OpenCached(ctx context.Context, name string) (*CachedSheet, error) {
	id, err := s.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.OpenCachedByID(ctx, id)
}

// OpenCachedByID returns a CachedSheet over a known spreadsheet ID,
// loading its full contents.
func (s *Service) OpenCachedByID(ctx context.Context, spreadsheetID string) (*CachedSheet, error) {
	sheet := s.OpenByID(spreadsheetID)
	if _, err := sheet.ReadAll(ctx, ReadOptions{}); err != nil {
		return nil, err
	}
	return &CachedSheet{sheet: sheet}, nil
}
