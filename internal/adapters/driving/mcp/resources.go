package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for gdevutils resources.
const uriScheme = "gdevutils://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "calendars",
		Name:        "calendars",
		Description: "Calendars visible to the authenticated account",
		MIMEType:    "application/json",
	}, s.handleCalendarsResource)
}

// calendarResource is one entry in the calendars resource.
type calendarResource struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary,omitempty"`
}

// handleCalendarsResource returns the account's calendar list.
func (s *Server) handleCalendarsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.Calendar.Calendars(ctx)
	if err != nil {
		return nil, err
	}

	calendars := make([]calendarResource, len(entries))
	for i, entry := range entries {
		calendars[i] = calendarResource{
			ID:      entry.Id,
			Summary: entry.Summary,
			Primary: entry.Primary,
		}
	}

	data, err := json.Marshal(calendars)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
