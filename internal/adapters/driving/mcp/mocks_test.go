package mcp

import (
	"context"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"

	"github.com/elemental-reasoning/gdevutils/gsheets"
)

type mockCalendar struct {
	calendars []*calendar.CalendarListEntry
	events    []*calendar.Event
	err       error

	gotCount int64
}

func (m *mockCalendar) Calendars(_ context.Context) ([]*calendar.CalendarListEntry, error) {
	return m.calendars, m.err
}

func (m *mockCalendar) NextEvents(_ context.Context, count int64) ([]*calendar.Event, error) {
	m.gotCount = count
	return m.events, m.err
}

type mockDrive struct {
	files []*drive.File
	err   error

	gotMimeType string
}

func (m *mockDrive) Files(_ context.Context) ([]*drive.File, error) {
	return m.files, m.err
}

func (m *mockDrive) FilesOfType(_ context.Context, mimeType string) ([]*drive.File, error) {
	m.gotMimeType = mimeType
	return m.files, m.err
}

type mockSheets struct {
	grid gsheets.Grid
	err  error

	gotName     string
	gotRange    string
	gotAppended gsheets.Grid
}

func (m *mockSheets) Read(_ context.Context, name, a1Range string) (gsheets.Grid, error) {
	m.gotName = name
	m.gotRange = a1Range
	return m.grid, m.err
}

func (m *mockSheets) Append(_ context.Context, name string, rows gsheets.Grid) error {
	m.gotName = name
	m.gotAppended = rows
	return m.err
}
