// Package loader turns uploaded PDFs into retrievable chunks: page-wise text
// extraction, overlapping chunking, embedding and upsert into a vector store.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"paperchat/model"
	"paperchat/store"
	"paperchat/types"

	"github.com/google/uuid"
)

// Collection names the vector store collection that holds one uploaded
// document's chunks. One collection per session is a deployment policy, not a
// store invariant.
func Collection(sessionID string) string {
	return "paper_" + sessionID
}

type Service struct {
	logger   *slog.Logger
	embedder model.Embedder
	store    store.VectorStorer
	cfg      types.ChunkConfig
}

// NewService validates the chunking parameters eagerly so bad configuration
// fails before any document work starts.
func NewService(embedder model.Embedder, storer store.VectorStorer, cfg types.ChunkConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		logger:   slog.Default(),
		embedder: embedder,
		store:    storer,
		cfg:      cfg,
	}, nil
}

// IngestResult reports what one document contributed to the store.
type IngestResult struct {
	Pages      []types.Page
	ChunkCount int
}

// Ingest runs the full pipeline for one PDF: extract pages, chunk, embed,
// upsert into the document's collection. Each error kind propagates intact;
// nothing is persisted when extraction, chunking or embedding fails.
func (s *Service) Ingest(ctx context.Context, path, docID string) (*IngestResult, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return nil, err
	}

	chunks, err := ChunkPages(docID, pages, s.cfg)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &IngestResult{Pages: pages}, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	records := make([]store.ChunkRecord, len(chunks))
	for i, ch := range chunks {
		records[i] = store.ChunkRecord{
			ID:        ch.ID,
			Text:      ch.Text,
			Page:      ch.Page,
			Position:  i,
			Embedding: vectors[i],
		}
	}
	if err := s.store.Upsert(ctx, Collection(docID), records); err != nil {
		return nil, err
	}

	s.logger.Info("document ingested",
		"doc_id", docID,
		"pages", len(pages),
		"chunks", len(chunks),
	)
	return &IngestResult{Pages: pages, ChunkCount: len(chunks)}, nil
}

// PersistUpload writes the uploaded bytes under a fresh session id and
// returns the stored path together with that id.
func PersistUpload(uploadDir string, data []byte) (string, string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}
	sessionID := uuid.New().String()
	path := filepath.Join(uploadDir, sessionID+".pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", "", fmt.Errorf("persist upload: %w", err)
	}
	return path, sessionID, nil
}
