// Package server exposes occupancy layouts over HTTP.
//
// # Routes
//
//	GET /healthz                                  liveness probe
//	GET /api/v1/timelines[.json|.svg|.ics|.txt|.dot] year layout
//	GET /api/v1/supports/{id}/overlaps[.dot|.svg]  overlap graph of one support
//
// Layout routes accept the query parameters year, group_by, vendor, client,
// status, support, style, lang and refresh. The format defaults to JSON.
//
// Responses carry a strong ETag computed from the body; a matching
// If-None-Match returns 304 Not Modified. Every response carries an
// X-Request-ID, taken from the request when it is a valid UUID.
//
// Errors are JSON objects with the error code and message:
//
//	{"error": {"code": "INVALID_YEAR", "message": "year 20244 out of range"}}
package server
