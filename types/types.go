package types

// Page is the text of one physical document page, as produced by the
// extractor. Numbering starts at 1 and follows document order. Empty text is
// valid output for image-only pages.
type Page struct {
	Number int
	Text   string
}

// Chunk is a bounded, overlapping slice of one page's text — the atomic unit
// of embedding and retrieval. IDs derive from document id, page number and
// chunk index, so re-processing the same document with the same parameters
// yields identical ids.
type Chunk struct {
	ID        string
	DocID     string
	Page      int
	Index     int
	CharStart int
	CharEnd   int
	Text      string
}

// RetrievalResult is one nearest-neighbor hit for a query. Distance is cosine
// distance: 0 means identical direction, 2 opposite.
type RetrievalResult struct {
	ChunkID  string  `json:"chunk_id"`
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	Distance float64 `json:"distance"`
}

// ChunkConfig holds the sliding-window parameters of the chunker.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// Validate checks the window parameters eagerly, before any chunk is produced.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 {
		return &ConfigError{Param: "chunk_size", Reason: "must be positive"}
	}
	if c.Overlap <= 0 || c.Overlap >= c.Size {
		return &ConfigError{Param: "chunk_overlap", Reason: "must satisfy 0 < overlap < chunk_size"}
	}
	return nil
}
