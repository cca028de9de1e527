package types

import "fmt"

// ExtractionError means the source document could not be parsed as a PDF.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding provider call failed or returned a
// malformed batch. The embedder never retries; callers decide.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError means the persistence layer is unavailable or the operation on
// a collection failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ConfigError means a pipeline parameter is invalid, e.g. overlap >= chunk
// size. Detected before any work is done or persisted.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Param, e.Reason)
}
