// Package httpx holds the small HTTP helpers shared by the model client and
// the weather tools. Requests are sent exactly once; callers decide how to
// treat failures.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds how much of a response body is read into memory.
const MaxBodyBytes = 8 << 20

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("http %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, bytes.TrimSpace(e.Body))
}

// DoJSON sends a request with a buffered JSON body. Content-Type and Accept
// default to application/json. Callers must close the returned response body.
func DoJSON(ctx context.Context, client *http.Client, method, url string, body []byte, headers http.Header) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if headers != nil {
		req.Header = headers.Clone()
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return client.Do(req)
}

// Get fetches url and returns the body of a 2xx response. Any other status is
// reported as a *StatusError.
func Get(ctx context.Context, client *http.Client, url string, headers http.Header) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if headers != nil {
		req.Header = headers.Clone()
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: http.MethodGet, URL: url, StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
