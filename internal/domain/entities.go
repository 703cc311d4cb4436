package domain

// Document is a single source file loaded for ingestion. It is immutable
// and discarded once it has been split into chunks.
type Document struct {
	ID   string // source filename
	Text string
}

// Chunk is a bounded contiguous slice of a document, the unit of retrieval.
// The ID is derived from the source ID and the chunk's ordinal within the
// document, so re-chunking the same document with the same parameters
// reproduces identical IDs.
type Chunk struct {
	ID          string
	SourceID    string
	Text        string
	StartOffset int // rune offset into the source document
}

// Passage is a retrieved chunk with its similarity score, ordered by
// descending relevance when returned from a search.
type Passage struct {
	Text     string
	SourceID string
	Score    float64
}

// ChatTurn is one completed question/answer exchange. Conversation memory
// is an explicit input list of turns, never hidden state.
type ChatTurn struct {
	Question string
	Answer   string
}

// ChunkFailure records a single chunk that could not be embedded or stored
// during ingestion.
type ChunkFailure struct {
	ChunkID  string
	SourceID string
	Reason   string
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	DocumentsProcessed int
	ChunksCreated      int
	ChunksFailed       int
	Failures           []ChunkFailure
}
