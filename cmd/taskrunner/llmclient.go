// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/httpclient"
	"github.com/taskforge/taskforge/pkg/llm"
)

// openAIChatClient is a trimmed, non-streaming implementation of
// llm.Client against the OpenAI-compatible chat completions endpoint —
// the concrete request/response framing the core's llm.Client interface
// deliberately excludes. Grounded on the teacher's pkg/llms.OpenAIProvider
// (createHTTPClient's retry/backoff/header-parsing options), but without
// the teacher's streaming Responses-API machinery: one role activation
// needs exactly one request and one reply, never a token stream.
type openAIChatClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

// newOpenAIChatClient builds a chat client against baseURL (the OpenAI
// API host or any OpenAI-compatible endpoint) using apiKey for bearer
// auth. An empty baseURL defaults to OpenAI's own host.
func newOpenAIChatClient(baseURL, apiKey string) *openAIChatClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIChatClient{
		http: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
			httpclient.WithMaxRetries(3),
			httpclient.WithBaseDelay(time.Second),
			httpclient.WithHeaderParser(httpclient.ParseOpenAIRateLimitHeaders),
		),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements llm.Client.
func (c *openAIChatClient) Complete(ctx context.Context, messages []llm.Message, model, provider string) (llm.Message, error) {
	if provider != "" && provider != "openai" {
		return llm.Message{}, fmt.Errorf("openai chat client: unsupported provider %q", provider)
	}

	payload := chatCompletionRequest{Model: model}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return llm.Message{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return llm.Message{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return llm.Message{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return llm.Message{}, fmt.Errorf("decode chat response: %w", err)
	}
	if decoded.Error != nil {
		return llm.Message{}, fmt.Errorf("chat request failed: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("chat request: no choices returned")
	}

	return llm.Message{Role: conversation.Assistant, Content: decoded.Choices[0].Message.Content}, nil
}

// apiKeyFromEnv reads the API key for the named provider from its
// conventional environment variable.
func apiKeyFromEnv(provider string) string {
	switch provider {
	case "", "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return os.Getenv(strings.ToUpper(provider) + "_API_KEY")
	}
}
