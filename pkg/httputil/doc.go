// Package httputil provides the HTTP client used by remote booking sources.
//
// # Overview
//
// [Client] fetches JSON documents and classifies failures into coded
// errors, so callers can retry transient ones:
//
//   - Network errors, 5xx and 429 responses are retryable NETWORK_ERROR
//   - Timeouts are retryable TIMEOUT
//   - 404 is NOT_FOUND
//   - Other 4xx responses are SOURCE_UNAVAILABLE
//
// Retryable errors are wrapped with cache.Retryable, which is what
// source.Collect retries with backoff:
//
//	c := httputil.NewClient(10 * time.Second)
//	c.Header.Set("Authorization", "Bearer "+token)
//	var page bookingsPage
//	err := c.GetJSON(ctx, url, &page)
package httputil
