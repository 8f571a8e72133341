package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedderClientEmbedReturnsVectorsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"first", "second"}, req.Input)

		_ = json.NewEncoder(w).Encode(embeddingsResponse{
			Data: []struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{
				{Embedding: []float32{0.2}, Index: 1},
				{Embedding: []float32{0.1}, Index: 0},
			},
		})
	}))
	defer srv.Close()

	client := newOpenAIEmbedderClient(srv.URL, "sk-test")
	vecs, err := client.Embed(context.Background(), []string{"first", "second"}, "text-embedding-3-small")

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	require.Equal(t, float32(0.1), vecs[0][0])
	require.Equal(t, float32(0.2), vecs[1][0])
}

func TestOpenAIEmbedderClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embeddingsResponse{
			Error: &struct {
				Message string `json:"message"`
			}{Message: "bad request"},
		})
	}))
	defer srv.Close()

	client := newOpenAIEmbedderClient(srv.URL, "sk-test")
	_, err := client.Embed(context.Background(), []string{"x"}, "model")
	require.ErrorContains(t, err, "bad request")
}

func TestOpenAIEmbedderClientMismatchedCountIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embeddingsResponse{})
	}))
	defer srv.Close()

	client := newOpenAIEmbedderClient(srv.URL, "sk-test")
	_, err := client.Embed(context.Background(), []string{"x", "y"}, "model")
	require.Error(t, err)
}
