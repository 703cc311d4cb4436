package chunker

import (
	"fmt"
	"strings"

	"letterchat/internal/domain"
)

// WindowChunker splits a document into fixed-size character windows with a
// fixed overlap between consecutive windows. Chunking is a pure function of
// the document and the chunker's parameters: the same input always yields
// the same chunks with the same IDs.
type WindowChunker struct {
	size    int // window length in runes
	overlap int // runes shared between consecutive windows
}

func NewWindowChunker(size, overlap int) *WindowChunker {
	return &WindowChunker{size: size, overlap: overlap}
}

// Chunk splits the document text. Start offsets advance by size-overlap
// until the text is exhausted; the final chunk may be shorter than size.
// If overlap >= size the step would never advance, so exactly one chunk
// covering the first window is produced instead.
func (c *WindowChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	if c.size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", c.size)
	}

	runes := []rune(doc.Text)
	if len(runes) == 0 {
		return nil, nil
	}

	if c.overlap >= c.size {
		end := c.size
		if end > len(runes) {
			end = len(runes)
		}
		return []domain.Chunk{{
			ID:          chunkID(doc.ID, 0),
			SourceID:    doc.ID,
			Text:        string(runes[:end]),
			StartOffset: 0,
		}}, nil
	}

	step := c.size - c.overlap
	var chunks []domain.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			ID:          chunkID(doc.ID, len(chunks)),
			SourceID:    doc.ID,
			Text:        string(runes[start:end]),
			StartOffset: start,
		})
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

// chunkID derives a chunk identifier from the source ID and the chunk's
// ordinal within the document. Re-ingesting the same document with the
// same parameters reproduces the same IDs, which makes upserts idempotent.
func chunkID(sourceID string, ordinal int) string {
	return fmt.Sprintf("%s-%d", strings.TrimSpace(sourceID), ordinal)
}
