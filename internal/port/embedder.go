package port

import "context"

// Embedder generates vector embeddings for text. The same embedder (same
// model identity) must be used at ingestion and query time; vectors from
// different models are not comparable.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for the given texts, returned in
	// input order, one vector per input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore stores embedding vectors and answers top-k similarity
// queries. Upsert is keyed by item ID with last-write-wins semantics;
// concurrent upserts and searches must be safe.
type VectorStore interface {
	// Upsert adds or replaces vectors in the store.
	Upsert(items []VectorItem) error

	// Search returns up to k results ordered by descending similarity,
	// ties broken by insertion order. Asking for more results than the
	// store holds returns everything, never an error.
	Search(query []float32, k int) ([]VectorResult, error)

	// Count returns the number of vectors in the store.
	Count() (int, error)
}

// VectorItem is a vector to be stored together with its payload.
type VectorItem struct {
	ID       string            // chunk ID
	Vector   []float32         // embedding vector
	Metadata map[string]string // payload: chunk text and source ID
}

// VectorResult is one search hit.
type VectorResult struct {
	ID       string
	Score    float64 // similarity, higher is better
	Metadata map[string]string
}

// Payload metadata keys shared by all vector store adapters.
const (
	MetaText   = "text"
	MetaSource = "source"
)
