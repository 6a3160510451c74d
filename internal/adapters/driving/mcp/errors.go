// Package mcp provides an MCP (Model Context Protocol) server adapter
// that exposes Google Calendar, Drive, and Sheets operations to AI
// assistants.
package mcp

import "errors"

// ErrMissingCalendar is returned when the calendar port is not provided.
var ErrMissingCalendar = errors.New("mcp: calendar port is required")
