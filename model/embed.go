package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"paperchat/types"
)

// Embedder maps a batch of texts to one fixed-dimensionality vector each,
// order-preserving. Implementations are safe for concurrent use.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Inputs
// larger than the batch size are split into sub-requests and the results
// concatenated in input order, transparently to the caller. Failures surface
// as *types.EmbeddingError and are not retried here — backoff policy belongs
// to the caller.
type OpenAIEmbedder struct {
	baseURL   string
	apiKey    string
	model     string
	batchSize int
	client    *http.Client
}

type EmbedderConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	BatchSize int
}

const defaultEmbedBatch = 64

func NewOpenAIEmbedder(cfg EmbedderConfig) *OpenAIEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultEmbedBatch
	}
	return &OpenAIEmbedder{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		batchSize: cfg.BatchSize,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, &types.EmbeddingError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &types.EmbeddingError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &types.EmbeddingError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, &types.EmbeddingError{Err: fmt.Errorf("provider status %d: %s", resp.StatusCode, string(payload))}
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &types.EmbeddingError{Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(out.Data) != len(texts) {
		return nil, &types.EmbeddingError{Err: fmt.Errorf("got %d embeddings for %d inputs", len(out.Data), len(texts))}
	}

	// The provider reports an index per item; order by it rather than
	// trusting response order.
	vectors := make([][]float32, len(texts))
	for i, d := range out.Data {
		idx := d.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		vectors[idx] = vec
	}
	for i, v := range vectors {
		if v == nil {
			return nil, &types.EmbeddingError{Err: fmt.Errorf("missing embedding for input %d", i)}
		}
	}
	return vectors, nil
}
