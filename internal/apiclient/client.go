// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient is the console's HTTP client for the project-tracking API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string
	// Timeout bounds every request. Zero means 15s.
	Timeout time.Duration
	// Transport is the base round tripper; nil uses http.DefaultTransport.
	// It is always wrapped for tracing.
	Transport http.RoundTripper
}

// Client talks JSON and multipart to the API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("API base URL must be absolute, got %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(rt,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "api " + r.Method + " " + r.URL.Path
				}),
			),
		},
	}, nil
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// Message returns the API's message for err, or fallback when err carries none
// (network failures, empty bodies).
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// File is one uploaded file forwarded in a multipart request.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends req and decodes a JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

// sendJSON issues method with a JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), r)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// sendMultipart issues method with form fields and files under fileField.
func (c *Client) sendMultipart(ctx context.Context, method, path string, fields [][2]string, fileField string, files []File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("writing field %s: %w", f[0], err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("creating file part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("writing file part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, out)
}
