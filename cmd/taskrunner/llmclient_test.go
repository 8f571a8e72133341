package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/conversation"
	"github.com/taskforge/taskforge/pkg/llm"
)

func TestOpenAIChatClientCompleteReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 1)

		_ = json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "hello back"}}},
		})
	}))
	defer srv.Close()

	client := newOpenAIChatClient(srv.URL, "sk-test")
	reply, err := client.Complete(context.Background(), []llm.Message{
		{Role: conversation.User, Content: "hi"},
	}, "gpt-4o", "openai")

	require.NoError(t, err)
	require.Equal(t, conversation.Assistant, reply.Role)
	require.Equal(t, "hello back", reply.Content)
}

func TestOpenAIChatClientRejectsUnsupportedProvider(t *testing.T) {
	client := newOpenAIChatClient("http://unused", "sk-test")
	_, err := client.Complete(context.Background(), nil, "model", "anthropic")
	require.Error(t, err)
}

func TestOpenAIChatClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatCompletionResponse{
			Error: &struct {
				Message string `json:"message"`
			}{Message: "rate limited"},
		})
	}))
	defer srv.Close()

	client := newOpenAIChatClient(srv.URL, "sk-test")
	_, err := client.Complete(context.Background(), []llm.Message{{Role: conversation.User, Content: "hi"}}, "gpt-4o", "")
	require.ErrorContains(t, err, "rate limited")
}

func TestAPIKeyFromEnvConventions(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")
	t.Setenv("CUSTOM_API_KEY", "sk-custom")

	require.Equal(t, "sk-openai", apiKeyFromEnv(""))
	require.Equal(t, "sk-openai", apiKeyFromEnv("openai"))
	require.Equal(t, "sk-anthropic", apiKeyFromEnv("anthropic"))
	require.Equal(t, "sk-custom", apiKeyFromEnv("custom"))
}
