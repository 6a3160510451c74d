package session

import (
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

// OAuth2 scopes for the supported services. The readonly variants are the
// defaults used by the read paths; mutating operations need the full scope.
const (
	ScopeCalendarReadonly = calendar.CalendarReadonlyScope
	ScopeCalendar         = calendar.CalendarScope
	ScopeDriveReadonly    = drive.DriveReadonlyScope
	ScopeDrive            = drive.DriveScope
	ScopeSheetsReadonly   = sheets.SpreadsheetsReadonlyScope
	ScopeSheets           = sheets.SpreadsheetsScope
)

// ReadonlyScopes covers read access to all three services.
var ReadonlyScopes = []string{
	ScopeCalendarReadonly,
	ScopeDriveReadonly,
	ScopeSheetsReadonly,
}

// ReadWriteScopes covers full access to all three services.
var ReadWriteScopes = []string{
	ScopeCalendar,
	ScopeDrive,
	ScopeSheets,
}
