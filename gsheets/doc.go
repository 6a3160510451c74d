// Package gsheets wraps the Google Sheets API behind a session.Session.
//
// Spreadsheet discovery goes through Drive (spreadsheets are just Drive
// files with the Sheets MIME type); cell access goes through the Sheets
// values and batchUpdate endpoints.
//
// Two access styles are offered, mirroring how a sheet tends to be used:
//
//   - Sheet performs every read and write online, mirroring results into a
//     local grid so repeated reads of clean data stay local.
//   - CachedSheet loads the full grid once, applies every operation
//     locally, and rewrites the sheet in one shot with Push. Fast, but it
//     assumes nobody else is editing the spreadsheet meanwhile.
//
// A1 references are 1-indexed throughout, matching what users see in the
// Sheets UI.
package gsheets
