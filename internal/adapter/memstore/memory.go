package memstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"letterchat/internal/port"
)

// MemoryStore is an in-memory vector store with brute-force cosine search.
// It serves tests and runs that need no persistence, with the same
// contract as the bbolt-backed store.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	nextSeq   uint64
	entries   map[string]entry
}

type entry struct {
	vector   []float32
	metadata map[string]string
	seq      uint64 // insertion order, used to break score ties
}

func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		entries:   make(map[string]entry),
	}
}

// Upsert inserts or replaces vectors keyed by ID. Replacing an entry keeps
// its original insertion sequence so result ordering stays stable across
// re-ingestion. A batch is applied as a whole: an invalid item rejects the
// entire batch and the store is left unchanged.
func (s *MemoryStore) Upsert(items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(item.Vector))
		}
	}

	for _, item := range items {
		seq := s.nextSeq
		if existing, ok := s.entries[item.ID]; ok {
			seq = existing.seq
		} else {
			s.nextSeq++
		}
		s.entries[item.ID] = entry{
			vector:   item.Vector,
			metadata: item.Metadata,
			seq:      seq,
		}
	}
	return nil
}

// Search scans every stored vector and returns the k most similar, ordered
// by descending cosine similarity with ties broken by insertion order.
func (s *MemoryStore) Search(query []float32, k int) ([]port.VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}
	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}

	type scored struct {
		id       string
		score    float64
		seq      uint64
		metadata map[string]string
	}

	scores := make([]scored, 0, len(s.entries))
	for id, e := range s.entries {
		scores = append(scores, scored{
			id:       id,
			score:    cosineSimilarity(query, e.vector),
			seq:      e.seq,
			metadata: e.metadata,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]port.VectorResult, k)
	for i := 0; i < k; i++ {
		results[i] = port.VectorResult{
			ID:       scores[i].id,
			Score:    scores[i].score,
			Metadata: scores[i].metadata,
		}
	}
	return results, nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
