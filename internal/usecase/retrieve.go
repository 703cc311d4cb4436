package usecase

import (
	"context"
	"fmt"

	"letterchat/internal/domain"
	"letterchat/internal/port"
)

// RetrieveUseCase answers "which passages are relevant to this question"
// by embedding the query once and searching the vector store.
type RetrieveUseCase struct {
	embedder port.Embedder
	store    port.VectorStore
	topK     int
}

func NewRetrieveUseCase(embedder port.Embedder, store port.VectorStore, topK int) *RetrieveUseCase {
	if topK <= 0 {
		topK = 3
	}
	return &RetrieveUseCase{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve returns the k most relevant passages in the store's order
// (descending similarity). k <= 0 uses the configured default.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	if k <= 0 {
		k = u.topK
	}

	vector, err := u.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := u.store.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexQuery, err)
	}

	passages := make([]domain.Passage, 0, len(results))
	for _, r := range results {
		passages = append(passages, domain.Passage{
			Text:     r.Metadata[port.MetaText],
			SourceID: r.Metadata[port.MetaSource],
			Score:    r.Score,
		})
	}
	return passages, nil
}
