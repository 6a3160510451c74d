package mcp

import (
	"context"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"

	"github.com/elemental-reasoning/gdevutils/gsheets"
)

// CalendarPort is the calendar surface the MCP tools call.
type CalendarPort interface {
	Calendars(ctx context.Context) ([]*calendar.CalendarListEntry, error)
	NextEvents(ctx context.Context, count int64) ([]*calendar.Event, error)
}

// DrivePort is the Drive surface the MCP tools call.
type DrivePort interface {
	Files(ctx context.Context) ([]*drive.File, error)
	FilesOfType(ctx context.Context, mimeType string) ([]*drive.File, error)
}

// SheetsPort is the Sheets surface the MCP tools call. Spreadsheets are
// addressed by name.
type SheetsPort interface {
	Read(ctx context.Context, name, a1Range string) (gsheets.Grid, error)
	Append(ctx context.Context, name string, rows gsheets.Grid) error
}

// Ports aggregates the domain operations required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	Calendar CalendarPort
	Drive    DrivePort
	Sheets   SheetsPort
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Calendar == nil {
		return ErrMissingCalendar
	}
	// Drive and Sheets are optional; their tools are registered only
	// when present.
	return nil
}

// SheetsService adapts a gsheets.Service to the SheetsPort interface.
type SheetsService struct {
	Service *gsheets.Service
}

// Read reads an A1 range from the named spreadsheet. An empty range
// reads the populated portion of the sheet.
func (s *SheetsService) Read(ctx context.Context, name, a1Range string) (gsheets.Grid, error) {
	id, err := s.Service.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	sheet := s.Service.OpenByID(id)
	if a1Range == "" {
		return sheet.ReadAll(ctx, gsheets.ReadOptions{Formatted: true, DatesAsStrings: true})
	}
	return sheet.ReadRange(ctx, a1Range, gsheets.ReadOptions{Formatted: true, DatesAsStrings: true})
}

// Append appends rows to the named spreadsheet.
func (s *SheetsService) Append(ctx context.Context, name string, rows gsheets.Grid) error {
	id, err := s.Service.Find(ctx, name)
	if err != nil {
		return err
	}
	return s.Service.OpenByID(id).AppendRows(ctx, rows)
}
