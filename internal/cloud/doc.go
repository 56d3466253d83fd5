// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the OpenRouter completion client used by the chat
// engine.
//
// OpenRouter exposes many hosted models behind one OpenAI-compatible API.
// folio sends the persona system prompt plus the transcript and reads the
// reply from choices[0].message.content.
//
// # Key Types
//
//   - Client: HTTP client for the chat completions endpoint
//   - ChatMessage: role/content pair in the API's vocabulary
//   - CompletionRequest: the JSON body sent upstream
//   - APIError: non-2xx response that maps to no sentinel error
//
// # Usage
//
//	client := cloud.NewClient(apiKey).
//	    WithModel("meta-llama/llama-3-8b-instruct").
//	    WithSiteURL("https://jane.dev").
//	    WithSiteName("Jane Doe Portfolio")
//	reply, err := client.Complete(ctx, []cloud.ChatMessage{
//	    cloud.NewSystemMessage(prompt),
//	    cloud.NewUserMessage("hello"),
//	})
//
// # Failure Semantics
//
// Each call makes exactly one attempt. Callers that want a degraded answer
// on failure (the engine's fallback rules) handle that themselves; the
// client never retries. API keys are never logged.
package cloud
