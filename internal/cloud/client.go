// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/folio/internal/logging"
)

const (
	// DefaultOpenRouterURL is where requests go unless cloud.base_url says otherwise.
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the model requested when none is configured.
	DefaultModel = "meta-llama/llama-3-8b-instruct"

	// DefaultSiteURL and DefaultSiteName fill the attribution headers when
	// nothing is configured. OpenRouter expects both on every request.
	DefaultSiteURL  = "https://folio.local"
	DefaultSiteName = "folio"

	// MaxResponseSize caps how much of a response body is read.
	// SECURITY: a hostile or broken endpoint cannot make us buffer unbounded data.
	MaxResponseSize int64 = 10 << 20

	completionsPath = "/chat/completions"
	userAgent       = "folio/1.0"
)

// Roles understood by the completions endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PERFORMANCE: one pooled transport for every client in the process.
// There is no client-level timeout here. Deadlines ride on the request
// context so an in-flight turn can be dropped the moment the chat is cleared.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 4,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
}

// Sentinel errors. Statuses without a sentinel surface as *APIError.
var (
	ErrNotConfigured       = errors.New("no OpenRouter API key configured")
	ErrAuthFailed          = errors.New("OpenRouter rejected the API key")
	ErrInsufficientCredits = errors.New("OpenRouter account is out of credits")
	ErrModelNotFound       = errors.New("OpenRouter does not know this model")
	// ErrRateLimited covers both a 429 from the server and the local budget.
	ErrRateLimited = errors.New("too many requests")
	// ErrEmptyResponse is a 2xx reply that carried no usable text.
	ErrEmptyResponse = errors.New("completion had no content")
)

// APIError is a non-2xx reply that maps to none of the sentinels.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("openrouter: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openrouter: HTTP %d (%s): %s", e.Status, e.Code, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage is one turn in the prompt sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage wraps the persona prompt.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// NewUserMessage wraps a visitor's question.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// NewAssistantMessage wraps an earlier bot reply.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// CompletionRequest is the JSON body POSTed to /chat/completions.
type CompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// completionReply is the subset of the response folio reads. Only
// choices[0].message.content matters; everything else is ignored.
type completionReply struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

func (r completionReply) text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// errorEnvelope is OpenRouter's error body. The code is sometimes a number
// and sometimes a string, hence RawMessage.
type errorEnvelope struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the OpenRouter completions endpoint. Configure it with the
// With* methods before first use; it is safe for concurrent Complete calls
// afterwards.
type Client struct {
	apiKey   string
	baseURL  string
	model    string
	siteURL  string
	siteName string
	timeout  time.Duration

	http    *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
}

// NewClient returns a client for apiKey. An empty key still yields a client;
// every call then fails with ErrNotConfigured, which the engine treats like
// any other remote failure and answers from its fallback rules.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  DefaultOpenRouterURL,
		model:    DefaultModel,
		siteURL:  DefaultSiteURL,
		siteName: DefaultSiteName,
		http:     &http.Client{Transport: sharedTransport},
		logger:   logging.Nop(),
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func (c *Client) WithBaseURL(base string) *Client {
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// WithModel sets the model identifier. Empty keeps the current one.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// WithSiteURL sets the HTTP-Referer attribution header. Blank keeps the
// current value.
func (c *Client) WithSiteURL(site string) *Client {
	if site = strings.TrimSpace(site); site != "" {
		c.siteURL = site
	}
	return c
}

// WithSiteName sets the X-Title attribution header. Blank keeps the
// current value.
func (c *Client) WithSiteName(name string) *Client {
	if name = strings.TrimSpace(name); name != "" {
		c.siteName = name
	}
	return c
}

// WithHTTPClient swaps the HTTP client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// WithRateLimit allows perMinute requests with a burst of one. Over budget,
// Complete fails at once with ErrRateLimited rather than queueing.
// perMinute <= 0 removes the limit.
func (c *Client) WithRateLimit(perMinute int) *Client {
	c.limiter = nil
	if perMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return c
}

// WithLogger attaches a logger; nil means silent.
func (c *Client) WithLogger(l *logging.Logger) *Client {
	c.logger = logging.OrNop(l).Named("cloud")
	return c
}

// Model reports the model identifier requests are sent with.
func (c *Client) Model() string { return c.model }

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool { return c.apiKey != "" }

// APIKeyMasked describes the key without revealing any of it.
// SECURITY: length and fingerprint only, never a prefix or suffix.
func (c *Client) APIKeyMasked() string {
	if !c.IsConfigured() {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.KeyFingerprint())
}

// KeyFingerprint is the first 8 hex digits of sha256(key), or "none".
func (c *Client) KeyFingerprint() string {
	if !c.IsConfigured() {
		return "none"
	}
	sum := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(sum[:4])
}

// Complete sends messages and returns the first choice's text. Exactly one
// request is made; callers decide what to do on failure.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return "", fmt.Errorf("%w: local budget of requests per minute spent", ErrRateLimited)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.post(ctx, CompletionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}
	text := reply.text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// post performs the HTTP round trip.
//
// SECURITY: headers and bodies are never logged, only path, status and timing.
func (c *Client) post(ctx context.Context, body CompletionRequest) (completionReply, error) {
	var reply completionReply

	payload, err := json.Marshal(body)
	if err != nil {
		return reply, fmt.Errorf("encode completion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return reply, fmt.Errorf("build completion request: %w", err)
	}
	c.applyHeaders(req.Header)

	c.logger.Debug("api request", "path", req.URL.Path, "model", body.Model, "messages", len(body.Messages))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "error", err, "duration", time.Since(start))
		return reply, fmt.Errorf("openrouter unreachable: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api response", "status", resp.StatusCode, "duration", time.Since(start))

	raw, err := readLimited(resp.Body)
	if err != nil {
		return reply, err
	}
	if resp.StatusCode/100 != 2 {
		return reply, statusError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return reply, fmt.Errorf("decode completion: %w", err)
	}
	return reply, nil
}

func (c *Client) applyHeaders(h http.Header) {
	h.Set("Authorization", "Bearer "+c.apiKey)
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", userAgent)
	// OpenRouter attribution. Never blank, see NewClient.
	h.Set("HTTP-Referer", c.siteURL)
	h.Set("X-Title", c.siteName)
}

func readLimited(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read completion body: %w", err)
	}
	if int64(len(raw)) > MaxResponseSize {
		return nil, fmt.Errorf("completion body larger than %d bytes", MaxResponseSize)
	}
	return raw, nil
}

// statusError maps a non-2xx reply to a sentinel where one fits, keeping the
// server's message when the body has one.
func statusError(status int, raw []byte) error {
	var sentinel error
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = ErrAuthFailed
	case http.StatusPaymentRequired:
		sentinel = ErrInsufficientCredits
	case http.StatusNotFound:
		sentinel = ErrModelNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	}

	var env errorEnvelope
	msg := ""
	if json.Unmarshal(raw, &env) == nil {
		msg = env.Error.Message
	}

	switch {
	case sentinel != nil && msg != "":
		return fmt.Errorf("%w: %s", sentinel, msg)
	case sentinel != nil:
		return sentinel
	case msg != "":
		return &APIError{Status: status, Code: strings.Trim(string(env.Error.Code), `"`), Message: msg}
	default:
		return &APIError{Status: status, Message: strings.TrimSpace(string(raw))}
	}
}
