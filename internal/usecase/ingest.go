package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"letterchat/internal/domain"
	"letterchat/internal/port"
)

// IngestUseCase runs the chunk -> embed -> upsert pipeline for a batch of
// documents. Embedding calls are I/O bound and independent per chunk, so
// chunks are processed by a bounded worker pool. A failure on one chunk is
// recorded and never aborts the rest of the batch.
type IngestUseCase struct {
	chunker     port.Chunker
	embedder    port.Embedder
	store       port.VectorStore
	concurrency int
}

func NewIngestUseCase(chunker port.Chunker, embedder port.Embedder, store port.VectorStore, concurrency int) *IngestUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &IngestUseCase{
		chunker:     chunker,
		embedder:    embedder,
		store:       store,
		concurrency: concurrency,
	}
}

// chunkOutcome reports one processed chunk back to the collector.
type chunkOutcome struct {
	chunk domain.Chunk
	err   error
}

// Ingest processes the documents and reports per-chunk results. Chunk IDs
// are deterministic, so re-running over the same documents leaves the
// index in the same logical state. progress may be nil.
func (u *IngestUseCase) Ingest(ctx context.Context, docs []domain.Document, progress func(done, total int)) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}

	var pending []domain.Chunk
	for _, doc := range docs {
		report.DocumentsProcessed++

		if strings.TrimSpace(doc.Text) == "" {
			report.ChunksFailed++
			report.Failures = append(report.Failures, domain.ChunkFailure{
				SourceID: doc.ID,
				Reason:   domain.ErrEmptyDocument.Error(),
			})
			continue
		}

		chunks, err := u.chunker.Chunk(doc)
		if err != nil {
			report.ChunksFailed++
			report.Failures = append(report.Failures, domain.ChunkFailure{
				SourceID: doc.ID,
				Reason:   err.Error(),
			})
			continue
		}
		pending = append(pending, chunks...)
	}

	total := len(pending)
	if total == 0 {
		return report, nil
	}

	jobs := make(chan domain.Chunk)
	outcomes := make(chan chunkOutcome)

	var wg sync.WaitGroup
	for i := 0; i < u.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				outcomes <- chunkOutcome{chunk: chunk, err: u.processChunk(ctx, chunk)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, chunk := range pending {
			select {
			case jobs <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	done := 0
	for outcome := range outcomes {
		done++
		if outcome.err != nil {
			report.ChunksFailed++
			report.Failures = append(report.Failures, domain.ChunkFailure{
				ChunkID:  outcome.chunk.ID,
				SourceID: outcome.chunk.SourceID,
				Reason:   outcome.err.Error(),
			})
		} else {
			report.ChunksCreated++
		}
		if progress != nil {
			progress(done, total)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// processChunk embeds one chunk and writes it to the store. Index writes
// are retried once before the chunk is recorded as failed.
func (u *IngestUseCase) processChunk(ctx context.Context, chunk domain.Chunk) error {
	vector, err := u.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return err
	}

	item := port.VectorItem{
		ID:     chunk.ID,
		Vector: vector,
		Metadata: map[string]string{
			port.MetaText:   chunk.Text,
			port.MetaSource: chunk.SourceID,
		},
	}

	if err := u.store.Upsert([]port.VectorItem{item}); err != nil {
		if retryErr := u.store.Upsert([]port.VectorItem{item}); retryErr != nil {
			return fmt.Errorf("%w: %v", domain.ErrIndexWrite, retryErr)
		}
	}
	return nil
}
