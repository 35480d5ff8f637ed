package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/matzehuels/occupancy/pkg/buildinfo"
	"github.com/matzehuels/occupancy/pkg/cache"
	occerrors "github.com/matzehuels/occupancy/pkg/errors"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// maxBody caps the size of a decoded response.
const maxBody = 64 << 20

// Client fetches JSON over HTTP.
type Client struct {
	HTTP   *http.Client
	Header http.Header // sent with every request
}

// NewClient creates a client with the given per-request timeout
// (0 means DefaultTimeout).
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
		Header: http.Header{
			"Accept":     {"application/json"},
			"User-Agent": {buildinfo.UserAgent()},
		},
	}
}

// GetJSON requests url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return occerrors.Wrap(occerrors.ErrCodeInvalidInput, err, "build request")
	}
	for k, vals := range c.Header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return occerrors.Wrap(occerrors.ErrCodeInvalidFormat, err, "decode %s", req.URL.Path)
	}
	return nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return cache.Retryable(occerrors.Wrap(occerrors.ErrCodeTimeout, err, "request timed out"))
	}
	return cache.Retryable(occerrors.Wrap(occerrors.ErrCodeNetwork, err, "request failed"))
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	msg := fmt.Sprintf("%s %s: %s", resp.Request.Method, resp.Request.URL.Path, resp.Status)
	switch {
	case code == http.StatusNotFound:
		return occerrors.New(occerrors.ErrCodeNotFound, "%s", msg)
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(occerrors.New(occerrors.ErrCodeNetwork, "%s", msg))
	default:
		return occerrors.New(occerrors.ErrCodeSourceUnavailable, "%s", msg)
	}
}
