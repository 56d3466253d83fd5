// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testKey = "sk-or-test-abcdefghijklmnopqrstuvwxyz0123456789"

const okBody = `{
	"id": "gen-1",
	"model": "meta-llama/llama-3-8b-instruct",
	"choices": [{
		"message": {"role": "assistant", "content": "Hi!"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
}`

func newTestClient(url string) *Client {
	return NewClient(testKey).WithBaseURL(url)
}

// =============================================================================
// REQUEST SHAPE TESTS
// =============================================================================

func TestComplete_RequestShape(t *testing.T) {
	var got CompletionRequest
	var headers http.Header
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/").
		WithModel("meta-llama/llama-3-8b-instruct").
		WithSiteURL("https://jane.dev").
		WithSiteName("Jane Doe Portfolio")

	reply, err := client.Complete(context.Background(), []ChatMessage{
		NewSystemMessage("persona"),
		NewAssistantMessage("welcome"),
		NewUserMessage("hello"),
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "Hi!" {
		t.Errorf("reply = %q, want %q", reply, "Hi!")
	}

	if path != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", path)
	}
	if h := headers.Get("Authorization"); h != "Bearer "+testKey {
		t.Errorf("Authorization = %q", h)
	}
	if h := headers.Get("HTTP-Referer"); h != "https://jane.dev" {
		t.Errorf("HTTP-Referer = %q", h)
	}
	if h := headers.Get("X-Title"); h != "Jane Doe Portfolio" {
		t.Errorf("X-Title = %q", h)
	}
	if h := headers.Get("Content-Type"); h != "application/json" {
		t.Errorf("Content-Type = %q", h)
	}

	if got.Model != "meta-llama/llama-3-8b-instruct" {
		t.Errorf("model = %q", got.Model)
	}
	wantRoles := []string{"system", "assistant", "user"}
	if len(got.Messages) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(got.Messages), len(wantRoles))
	}
	for i, role := range wantRoles {
		if got.Messages[i].Role != role {
			t.Errorf("messages[%d].role = %q, want %q", i, got.Messages[i].Role, role)
		}
	}
}

func TestComplete_AttributionHeadersDefaulted(t *testing.T) {
	var referer, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	// Blank values from an empty config must not erase the defaults.
	client := newTestClient(server.URL).WithSiteURL("").WithSiteName("  ")
	if _, err := client.Complete(context.Background(), []ChatMessage{NewUserMessage("hi")}); err != nil {
		t.Fatal(err)
	}
	if referer != DefaultSiteURL {
		t.Errorf("HTTP-Referer = %q, want %q", referer, DefaultSiteURL)
	}
	if title != DefaultSiteName {
		t.Errorf("X-Title = %q, want %q", title, DefaultSiteName)
	}
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestComplete_NotConfigured(t *testing.T) {
	client := NewClient("   ")
	if client.IsConfigured() {
		t.Fatal("blank key should not count as configured")
	}
	_, err := client.Complete(context.Background(), nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestComplete_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"No auth credentials found"}}`, ErrAuthFailed},
		{"payment required", http.StatusPaymentRequired, `{"error":{"message":"Insufficient credits"}}`, ErrInsufficientCredits},
		{"not found", http.StatusNotFound, `not json`, ErrModelNotFound},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComplete_ServerErrorIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":{"code":"upstream","message":"provider down"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Code != "upstream" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "provider down") {
		t.Errorf("Error() = %q", apiErr.Error())
	}
}

func TestComplete_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err == nil {
		t.Fatal("expected an error for 503")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want exactly 1", n)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestComplete_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := newTestClient(server.URL).Complete(ctx, []ChatMessage{NewUserMessage("hi")})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Complete did not return after cancel")
	}
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL).WithTimeout(50 * time.Millisecond)
	_, err := client.Complete(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestComplete_RateLimitBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL).WithRateLimit(1)
	msgs := []ChatMessage{NewUserMessage("hi")}

	if _, err := client.Complete(context.Background(), msgs); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := client.Complete(context.Background(), msgs)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("second request err = %v, want ErrRateLimited", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

// =============================================================================
// KEY HANDLING TESTS
// =============================================================================

func TestAPIKeyMasked(t *testing.T) {
	client := NewClient(testKey)
	masked := client.APIKeyMasked()
	if strings.Contains(masked, "abcdef") || strings.Contains(masked, "sk-or") {
		t.Errorf("masked key leaks key material: %q", masked)
	}
	if !strings.Contains(masked, client.KeyFingerprint()) {
		t.Errorf("masked key should include fingerprint: %q", masked)
	}
	if len(client.KeyFingerprint()) != 8 {
		t.Errorf("fingerprint = %q, want 8 hex chars", client.KeyFingerprint())
	}
	if NewClient("").APIKeyMasked() != "[not set]" {
		t.Error("empty key should mask as [not set]")
	}
}
