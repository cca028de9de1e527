package loader

import (
	"fmt"

	"paperchat/types"
)

// ChunkPages slides a fixed window across each page's text and emits
// overlapping chunks. Boundaries and ids are fully determined by the input
// text and parameters, so re-running over the same document produces
// byte-identical chunks — the store can be re-upserted without duplication.
//
// Size and Overlap count characters (runes), not bytes, so windows never cut
// a multi-byte sequence in half; CharStart/CharEnd are in the same unit.
// Consecutive chunks on a page overlap by exactly cfg.Overlap characters. The
// final window of a page may be shorter than cfg.Size. Chunks never span a
// page boundary, and pages with empty text yield no chunks.
func ChunkPages(docID string, pages []types.Page, cfg types.ChunkConfig) ([]types.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var chunks []types.Chunk
	for _, page := range pages {
		text := []rune(page.Text)
		n := len(text)
		if n == 0 {
			continue
		}

		start := 0
		for index := 0; start < n; index++ {
			end := start + cfg.Size
			if end > n {
				end = n
			}
			chunks = append(chunks, types.Chunk{
				ID:        ChunkID(docID, page.Number, index),
				DocID:     docID,
				Page:      page.Number,
				Index:     index,
				CharStart: start,
				CharEnd:   end,
				Text:      string(text[start:end]),
			})
			if end == n {
				break
			}
			start = end - cfg.Overlap
		}
	}
	return chunks, nil
}

// ChunkID is stable across runs: document id + page number + chunk index.
func ChunkID(docID string, page, index int) string {
	return fmt.Sprintf("%s_p%d_c%d", docID, page, index)
}
