package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"paperchat/types"
)

const testDim = 8

// fakeProvider answers /embeddings with one vector per input whose first
// component encodes the input's length, so order is verifiable.
func fakeProvider(t *testing.T, requests *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if requests != nil {
			*requests = append(*requests, req.Input)
		}

		var resp embeddingResponse
		for i, text := range req.Input {
			vec := make([]float64, testDim)
			vec[0] = float64(len(text))
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float64 `json:"embedding"`
			}{Index: i, Embedding: vec})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbedTexts_OrderAndDimensionality(t *testing.T) {
	srv := fakeProvider(t, nil)
	defer srv.Close()

	e := NewOpenAIEmbedder(EmbedderConfig{BaseURL: srv.URL, APIKey: "k"})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := e.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, vec := range vectors {
		if len(vec) != testDim {
			t.Errorf("vector %d has dimension %d, want %d", i, len(vec), testDim)
		}
		if int(vec[0]) != len(texts[i]) {
			t.Errorf("vector %d out of order: marker %v, want %d", i, vec[0], len(texts[i]))
		}
	}
}

func TestEmbedTexts_BatchesTransparently(t *testing.T) {
	var requests [][]string
	srv := fakeProvider(t, &requests)
	defer srv.Close()

	e := NewOpenAIEmbedder(EmbedderConfig{BaseURL: srv.URL, BatchSize: 2})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := e.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 3 {
		t.Fatalf("expected 3 sub-requests for batch size 2, got %d", len(requests))
	}
	for i, batch := range requests {
		if len(batch) > 2 {
			t.Errorf("request %d carried %d inputs, batch limit is 2", i, len(batch))
		}
	}
	// Concatenated results keep original input order.
	for i, vec := range vectors {
		if int(vec[0]) != len(texts[i]) {
			t.Errorf("vector %d out of order after batching: marker %v", i, vec[0])
		}
	}
}

func TestEmbedTexts_EmptyInput(t *testing.T) {
	e := NewOpenAIEmbedder(EmbedderConfig{BaseURL: "http://unused"})
	vectors, err := e.EmbedTexts(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 0 {
		t.Fatalf("expected no vectors, got %d", len(vectors))
	}
}

func TestEmbedTexts_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(EmbedderConfig{BaseURL: srv.URL})

	_, err := e.EmbedTexts(context.Background(), []string{"text"})
	var embedErr *types.EmbeddingError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
}

func TestEmbedTexts_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{1}}},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(EmbedderConfig{BaseURL: srv.URL})

	_, err := e.EmbedTexts(context.Background(), []string{"one", "two"})
	var embedErr *types.EmbeddingError
	if !errors.As(err, &embedErr) {
		t.Fatalf("expected EmbeddingError on count mismatch, got %v", err)
	}
}
