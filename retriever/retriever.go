// Package retriever assembles a bounded grounding context from the chunks
// nearest to a user query.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"paperchat/model"
	"paperchat/store"
	"paperchat/types"
)

// NoContext is returned as the context block when retrieval finds nothing, or
// when nothing fits the character budget. Not an error condition.
const NoContext = "(no context retrieved)"

const excerptSeparator = "\n\n---\n\n"

type Retriever struct {
	embedder model.Embedder
	store    store.VectorStorer
}

func New(embedder model.Embedder, storer store.VectorStorer) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    storer,
	}
}

// BuildContext embeds the query, fetches the topK nearest chunks from the
// collection and renders them into a single block of at most maxChars.
// Truncation happens at chunk boundaries only, dropping the lowest-ranked
// chunks first. The returned sources enumerate exactly the chunks that made
// it into the block, in rendered order, so citations stay accurate.
func (r *Retriever) BuildContext(ctx context.Context, collection, query string, topK, maxChars int) (string, []types.RetrievalResult, error) {
	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return "", nil, err
	}

	results, err := r.store.Query(ctx, collection, vectors[0], topK)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sources := make([]types.RetrievalResult, 0, len(results))
	for _, res := range results {
		excerpt := renderExcerpt(res)
		needed := len(excerpt)
		if len(sources) > 0 {
			needed += len(excerptSeparator)
		}
		if sb.Len()+needed > maxChars {
			break
		}
		if len(sources) > 0 {
			sb.WriteString(excerptSeparator)
		}
		sb.WriteString(excerpt)
		sources = append(sources, res)
	}

	if len(sources) == 0 {
		return NoContext, sources, nil
	}
	return sb.String(), sources, nil
}

func renderExcerpt(res types.RetrievalResult) string {
	return fmt.Sprintf("[p.%d | distance %.4f]\n%s", res.Page, res.Distance, res.Text)
}
