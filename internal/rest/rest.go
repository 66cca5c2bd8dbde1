// Package rest holds the small HTTP helpers shared by the token
// exchange clients. Callers get the status code and raw body back so
// they can classify provider-specific rejections themselves.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every exchange request. The device-code wait is
// handled separately by the identity authenticator.
const DefaultTimeout = 30 * time.Second

func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into result.
func (r *Response) Decode(result any) error {
	if err := json.Unmarshal(r.Body, result); err != nil {
		return fmt.Errorf("decoding response (status %d): %w", r.StatusCode, err)
	}
	return nil
}

// PostJSON sends payload as JSON and reads the full response. A non-nil
// error means the request never produced a response (transport
// failure); status-code handling is the caller's job.
func PostJSON(ctx context.Context, hc *http.Client, url string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return do(hc, req)
}

// Get issues a GET with an optional bearer token.
func Get(ctx context.Context, hc *http.Client, url, bearer string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return do(hc, req)
}

func do(hc *http.Client, req *http.Request) (*Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
