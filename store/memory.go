package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"paperchat/types"
)

// MemoryStore is a brute-force cosine scan over in-process collections. It
// backs tests and single-process runs with the same contract as the Postgres
// adapter, minus durability.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order   []string // insertion order, decides ties
	records map[string]ChunkRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memCollection),
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, collection string, records []ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = &memCollection{records: make(map[string]ChunkRecord)}
		s.collections[collection] = coll
	}
	for _, rec := range records {
		if _, exists := coll.records[rec.ID]; !exists {
			coll.order = append(coll.order, rec.ID)
		}
		coll.records[rec.ID] = rec
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]types.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok || topK <= 0 {
		return nil, nil
	}

	results := make([]types.RetrievalResult, 0, len(coll.order))
	for _, id := range coll.order {
		rec := coll.records[id]
		results = append(results, types.RetrievalResult{
			ChunkID:  rec.ID,
			Text:     rec.Text,
			Page:     rec.Page,
			Distance: cosineDistance(embedding, rec.Embedding),
		})
	}

	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) DropCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

// cosineDistance is 1 - cosine similarity: 0 for identical direction, 2 for
// opposite, matching pgvector's <=> operator.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
