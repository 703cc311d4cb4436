package domain

import "errors"

// Failure taxonomy for the pipeline. Adapters wrap these sentinels so
// callers can classify with errors.Is without depending on provider types.
var (
	// ErrEmptyDocument marks a document with no usable text. The document
	// is skipped and recorded; it never aborts the batch.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrEmbeddingUnavailable marks an embedding call that failed after
	// the retry budget was exhausted.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationUnavailable marks a completion call that failed after
	// the retry budget was exhausted.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrIndexWrite marks a vector store upsert failure.
	ErrIndexWrite = errors.New("index write failed")

	// ErrIndexQuery marks a vector store search failure. Without context
	// no answer can be produced, so this fails the whole question.
	ErrIndexQuery = errors.New("index query failed")

	// ErrPromptTooLarge is returned when a single passage plus the
	// question already exceeds the prompt budget, after lower-ranked
	// passages have been dropped.
	ErrPromptTooLarge = errors.New("prompt exceeds size budget")
)

// FailureKind maps an error to a stable label for structured logs.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, ErrEmbeddingUnavailable):
		return "embedding_unavailable"
	case errors.Is(err, ErrGenerationUnavailable):
		return "generation_unavailable"
	case errors.Is(err, ErrIndexWrite):
		return "index_write"
	case errors.Is(err, ErrIndexQuery):
		return "index_query"
	case errors.Is(err, ErrPromptTooLarge):
		return "prompt_too_large"
	default:
		return "internal"
	}
}
