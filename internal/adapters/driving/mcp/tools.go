package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/drive/v3"

	"github.com/elemental-reasoning/gdevutils/gcal"
	"github.com/elemental-reasoning/gdevutils/gsheets"
)

// CalendarEventsInput is the input schema for the calendar_events tool.
type CalendarEventsInput struct {
	Count int `json:"count,omitempty" jsonschema:"number of upcoming events to return (default 10)"`
}

// EventOutput represents a single calendar event.
type EventOutput struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
}

// CalendarEventsOutput is the output schema for the calendar_events tool.
type CalendarEventsOutput struct {
	Events []EventOutput `json:"events"`
	Count  int           `json:"count"`
}

// DriveFilesInput is the input schema for the drive_files tool.
type DriveFilesInput struct {
	MimeType string `json:"mime_type,omitempty" jsonschema:"restrict results to files of this MIME type"`
}

// FileOutput represents a single Drive file.
type FileOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// DriveFilesOutput is the output schema for the drive_files tool.
type DriveFilesOutput struct {
	Files []FileOutput `json:"files"`
	Count int          `json:"count"`
}

// SheetsReadInput is the input schema for the sheets_read tool.
type SheetsReadInput struct {
	Spreadsheet string `json:"spreadsheet" jsonschema:"name of the spreadsheet to read"`
	Range       string `json:"range,omitempty" jsonschema:"A1 range to read, e.g. A1:G10; the whole sheet when omitted"`
}

// SheetsReadOutput is the output schema for the sheets_read tool.
type SheetsReadOutput struct {
	Rows [][]any `json:"rows"`
}

// SheetsAppendInput is the input schema for the sheets_append tool.
type SheetsAppendInput struct {
	Spreadsheet string  `json:"spreadsheet" jsonschema:"name of the spreadsheet to append to"`
	Rows        [][]any `json:"rows" jsonschema:"rows of cell values to append after the last populated row"`
}

// SheetsAppendOutput is the output schema for the sheets_append tool.
type SheetsAppendOutput struct {
	Appended int `json:"appended"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "calendar_events",
		Description: "List upcoming events from the primary calendar",
	}, s.handleCalendarEvents)

	if s.ports.Drive != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "drive_files",
			Description: "List Drive files, optionally restricted to one MIME type",
		}, s.handleDriveFiles)
	}

	if s.ports.Sheets != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sheets_read",
			Description: "Read cell values from a spreadsheet by name",
		}, s.handleSheetsRead)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sheets_append",
			Description: "Append rows to a spreadsheet by name",
		}, s.handleSheetsAppend)
	}
}

func (s *Server) handleCalendarEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CalendarEventsInput,
) (*mcp.CallToolResult, CalendarEventsOutput, error) {
	count := input.Count
	if count <= 0 {
		count = 10
	}

	events, err := s.ports.Calendar.NextEvents(ctx, int64(count))
	if err != nil {
		return nil, CalendarEventsOutput{}, err
	}

	output := CalendarEventsOutput{
		Events: make([]EventOutput, len(events)),
		Count:  len(events),
	}
	for i, ev := range events {
		start, end := gcal.EventTimes(ev)
		output.Events[i] = EventOutput{
			ID:       ev.Id,
			Summary:  ev.Summary,
			Start:    start,
			End:      end,
			Location: ev.Location,
		}
	}

	return nil, output, nil
}

func (s *Server) handleDriveFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DriveFilesInput,
) (*mcp.CallToolResult, DriveFilesOutput, error) {
	files, err := s.listFiles(ctx, input.MimeType)
	if err != nil {
		return nil, DriveFilesOutput{}, err
	}

	output := DriveFilesOutput{
		Files: make([]FileOutput, len(files)),
		Count: len(files),
	}
	for i, f := range files {
		output.Files[i] = FileOutput{ID: f.Id, Name: f.Name, MimeType: f.MimeType}
	}

	return nil, output, nil
}

func (s *Server) listFiles(ctx context.Context, mimeType string) ([]*drive.File, error) {
	if mimeType != "" {
		return s.ports.Drive.FilesOfType(ctx, mimeType)
	}
	return s.ports.Drive.Files(ctx)
}

func (s *Server) handleSheetsRead(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SheetsReadInput,
) (*mcp.CallToolResult, SheetsReadOutput, error) {
	grid, err := s.ports.Sheets.Read(ctx, input.Spreadsheet, input.Range)
	if err != nil {
		return nil, SheetsReadOutput{}, err
	}
	return nil, SheetsReadOutput{Rows: grid}, nil
}

func (s *Server) handleSheetsAppend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SheetsAppendInput,
) (*mcp.CallToolResult, SheetsAppendOutput, error) {
	if err := s.ports.Sheets.Append(ctx, input.Spreadsheet, gsheets.Grid(input.Rows)); err != nil {
		return nil, SheetsAppendOutput{}, err
	}
	return nil, SheetsAppendOutput{Appended: len(input.Rows)}, nil
}
