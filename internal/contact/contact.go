// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contact submits the portfolio contact form to a hosted forms
// endpoint (Formspree, Getform and similar services that accept JSON).
//
// Submission is fire-and-forget: one POST, success means a 2xx status.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/folio/internal/logging"
)

// DefaultTimeout bounds a submission when the caller's context has no
// deadline.
const DefaultTimeout = 15 * time.Second

var (
	// ErrNotConfigured indicates no forms endpoint is set.
	ErrNotConfigured = errors.New("contact endpoint not configured")

	// ErrRejected indicates the endpoint answered with a non-2xx status.
	ErrRejected = errors.New("submission rejected")
)

// Submission is the form payload.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// FieldError reports a missing or malformed form field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Normalize trims every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate checks the normalized submission. It returns the first
// *FieldError found.
func (s Submission) Validate() error {
	switch {
	case s.Name == "":
		return &FieldError{Field: "name", Reason: "is required"}
	case s.Email == "":
		return &FieldError{Field: "email", Reason: "is required"}
	case !strings.Contains(s.Email, "@") || strings.HasPrefix(s.Email, "@") || strings.HasSuffix(s.Email, "@"):
		return &FieldError{Field: "email", Reason: "is not a valid address"}
	case s.Message == "":
		return &FieldError{Field: "message", Reason: "is required"}
	}
	return nil
}

// Client posts submissions to a forms endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient returns a client for endpoint. An empty endpoint yields a client
// whose Submit always fails with ErrNotConfigured.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{},
		logger:     logging.Nop(),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(l *logging.Logger) *Client {
	c.logger = logging.OrNop(l).Named("contact")
	return c
}

// IsConfigured reports whether an endpoint is set.
func (c *Client) IsConfigured() bool {
	return c.endpoint != ""
}

// Submit validates and posts sub. It returns nil only for a 2xx response.
func (c *Client) Submit(ctx context.Context, sub Submission) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	sub = sub.Normalize()
	if err := sub.Validate(); err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("contact submission failed", "error", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("contact submission rejected", "status", resp.StatusCode)
		return fmt.Errorf("%w: HTTP %d", ErrRejected, resp.StatusCode)
	}

	c.logger.Info("contact submission sent", "status", resp.StatusCode)
	return nil
}
