//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of Textform.
//
// Textform is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Textform is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Textform. If not, see https://www.gnu.org/licenses/.

package readers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/aaronlmathis/textform/core"
)

// This file implements an HTTP reader that turns each URL into a streamed file record.

// HTTPReaderError provides structured error information for HTTP reader operations
type HTTPReaderError struct {
	Op         string // Operation that failed (e.g., "request", "status")
	StatusCode int    // HTTP status code if applicable
	URL        string // URL being accessed when error occurred
	Err        error  // Underlying error
}

func (e *HTTPReaderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("http reader %s [%d] %s: %v", e.Op, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("http reader %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *HTTPReaderError) Unwrap() error {
	return e.Err
}

// HTTPReaderOptions configures the HTTP reader
type HTTPReaderOptions struct {
	Headers      map[string]string // Extra request headers
	Timeout      time.Duration     // Client timeout when no custom client is set
	UserAgent    string            // User-Agent header
	Encoding     string            // Host encoding attached to records
	CustomClient *http.Client      // Client to use instead of the default
}

// ReaderOptionHTTP represents a configuration function for HTTPReader
type ReaderOptionHTTP func(*HTTPReaderOptions)

// WithHTTPHeaders adds request headers.
func WithHTTPHeaders(headers map[string]string) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		for k, v := range headers {
			opts.Headers[k] = v
		}
	}
}

// WithHTTPBearerToken sets a bearer token.
func WithHTTPBearerToken(token string) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		opts.Headers["Authorization"] = "Bearer " + token
	}
}

// WithHTTPTimeout sets the client timeout.
func WithHTTPTimeout(timeout time.Duration) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		opts.Timeout = timeout
	}
}

// WithHTTPUserAgent sets the User-Agent header.
func WithHTTPUserAgent(userAgent string) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		opts.UserAgent = userAgent
	}
}

// WithHTTPEncoding sets the host encoding attached to every record.
func WithHTTPEncoding(encoding string) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		opts.Encoding = encoding
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ReaderOptionHTTP {
	return func(opts *HTTPReaderOptions) {
		opts.CustomClient = client
	}
}

// HTTPReader implements core.FileSource for a list of URLs.
// Each response body becomes the streamed content of one record whose Path is the URL path.
type HTTPReader struct {
	urls   []string
	index  int
	client *http.Client
	opts   *HTTPReaderOptions
}

// NewHTTPReader creates a new HTTP reader over urls.
func NewHTTPReader(urls []string, options ...ReaderOptionHTTP) (*HTTPReader, error) {
	opts := &HTTPReaderOptions{
		Headers:   make(map[string]string),
		Timeout:   30 * time.Second,
		UserAgent: "Textform-HTTPReader/1.0",
	}
	for _, option := range options {
		option(opts)
	}
	if len(urls) == 0 {
		return nil, &HTTPReaderError{Op: "validate_options", Err: fmt.Errorf("at least one url is required")}
	}
	for _, raw := range urls {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, &HTTPReaderError{Op: "validate_options", URL: raw, Err: err}
		}
	}

	client := opts.CustomClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPReader{
		urls:   append([]string(nil), urls...),
		client: client,
		opts:   opts,
	}, nil
}

// Read implements the core.FileSource interface
func (hr *HTTPReader) Read(ctx context.Context) (*core.FileRecord, error) {
	select {
	case <-ctx.Done():
		return nil, &HTTPReaderError{Op: "read", Err: ctx.Err()}
	default:
	}
	if hr.index >= len(hr.urls) {
		return nil, io.EOF
	}
	target := hr.urls[hr.index]
	hr.index++

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &HTTPReaderError{Op: "request", URL: target, Err: err}
	}
	for k, v := range hr.opts.Headers {
		req.Header.Set(k, v)
	}
	if hr.opts.UserAgent != "" {
		req.Header.Set("User-Agent", hr.opts.UserAgent)
	}

	resp, err := hr.client.Do(req)
	if err != nil {
		return nil, &HTTPReaderError{Op: "request", URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPReaderError{Op: "status", StatusCode: resp.StatusCode, URL: target, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	parsed, _ := url.Parse(target)
	recordPath := path.Clean("/" + parsed.Path)
	return &core.FileRecord{
		Path:     recordPath,
		Base:     path.Dir(recordPath),
		Encoding: hr.opts.Encoding,
		Stream:   resp.Body,
	}, nil
}

// Close implements the core.FileSource interface
func (hr *HTTPReader) Close() error {
	return nil
}
