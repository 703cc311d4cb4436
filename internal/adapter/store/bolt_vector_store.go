package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"letterchat/internal/port"
)

var bucketVectors = []byte("vectors")

// BoltVectorStore persists vectors in BoltDB and mirrors them in memory
// for search. Search is a brute-force linear scan over the mirror; exact
// results, no recall trade-off, adequate for a corpus of letter chunks.
type BoltVectorStore struct {
	db        *bbolt.DB
	dimension int
	mu        sync.RWMutex
	entries   map[string]vectorEntry
}

type vectorEntry struct {
	vector   []float32
	metadata map[string]string
	seq      uint64
}

type storedVector struct {
	Vector   []float32         `json:"v"`
	Metadata map[string]string `json:"m,omitempty"`
	Seq      uint64            `json:"s"`
}

// NewBoltVectorStore opens (or creates) the database at path.
func NewBoltVectorStore(path string, dimension int) (*BoltVectorStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	s := &BoltVectorStore{
		db:        db,
		dimension: dimension,
		entries:   make(map[string]vectorEntry),
	}
	if err := s.loadVectors(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	return s, nil
}

func (s *BoltVectorStore) loadVectors() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			s.entries[string(k)] = vectorEntry{
				vector:   stored.Vector,
				metadata: stored.Metadata,
				seq:      stored.Seq,
			}
			return nil
		})
	})
}

// Upsert inserts or replaces entries keyed by ID, last write wins. A
// replaced entry keeps its original insertion sequence so tie-breaking
// stays stable across re-ingestion and restarts. The batch is atomic:
// the in-memory mirror is only updated after the transaction commits,
// so a failed batch leaves both the mirror and the file unchanged.
func (s *BoltVectorStore) Upsert(items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(item.Vector))
		}
	}

	staged := make(map[string]vectorEntry, len(items))
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return fmt.Errorf("vectors bucket not found")
		}

		for _, item := range items {
			var seq uint64
			if prev, ok := staged[item.ID]; ok {
				seq = prev.seq
			} else if existing, ok := s.entries[item.ID]; ok {
				seq = existing.seq
			} else {
				next, err := b.NextSequence()
				if err != nil {
					return err
				}
				seq = next
			}

			data, err := json.Marshal(storedVector{
				Vector:   item.Vector,
				Metadata: item.Metadata,
				Seq:      seq,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}

			staged[item.ID] = vectorEntry{
				vector:   item.Vector,
				metadata: item.Metadata,
				seq:      seq,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id, e := range staged {
		s.entries[id] = e
	}
	return nil
}

// Search returns up to k entries ordered by descending cosine similarity,
// ties broken by insertion sequence.
func (s *BoltVectorStore) Search(query []float32, k int) ([]port.VectorResult, error) {
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

func (s *BoltVectorStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *BoltVectorStore) Close() error {
	return s.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
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
