// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	aerr "github.com/sapcc/apiprobe/internal/errors"
)

// Options tune the underlying http.Client.
type Options struct {
	Insecure bool
	// Timeout per request, zero means no timeout.
	Timeout time.Duration
	Debug   bool
}

// Client issues requests against a single service.
type Client struct {
	baseURL string
	http    *http.Client
}

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	// Auth sends Token as bearer credential, even when it is empty.
	Auth  bool
	Token string
	// Body is JSON encoded when not nil.
	Body any
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Text returns the raw body as string.
func (r *Response) Text() string {
	return string(r.Body)
}

// New builds a client for baseURL, which must not end with a slash.
func New(baseURL string, opts Options) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	var rt http.RoundTripper = transport
	if opts.Debug {
		rt = &RoundTripper{Rt: transport}
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: rt,
			Timeout:   opts.Timeout,
		},
	}
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends r and reads the whole response. Any failure below HTTP is
// returned as *errors.TransportError, non 2xx statuses are not errors.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	target := c.baseURL + r.Path

	var body io.Reader
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, &aerr.TransportError{Op: r.Method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Auth {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &aerr.TransportError{Op: r.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &aerr.TransportError{Op: r.Method, URL: target, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
		Duration:   time.Since(start),
	}, nil
}
