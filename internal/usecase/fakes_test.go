package usecase

import (
	"context"
	"fmt"
	"sync"

	"letterchat/internal/domain"
	"letterchat/internal/port"
)

// stubEmbedder returns fixed vectors per text and a uniform default for
// anything unlisted.
type stubEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failOn  map[string]error
	calls   int
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vectors: make(map[string][]float32),
		failOn:  make(map[string]error),
	}
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if err, ok := e.failOn[text]; ok {
		return nil, err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 1}, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int    { return 2 }
func (e *stubEmbedder) ModelName() string { return "stub" }

// stubLLM echoes a canned answer or fails.
type stubLLM struct {
	mu         sync.Mutex
	answer     string
	err        error
	lastSystem string
	lastPrompt string
}

func (l *stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSystem = systemPrompt
	l.lastPrompt = userPrompt
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func (l *stubLLM) ModelName() string { return "stub" }

// failingStore fails every operation, for exercising the query-path
// failure taxonomy.
type failingStore struct{}

func (failingStore) Upsert([]port.VectorItem) error { return fmt.Errorf("disk gone") }
func (failingStore) Search([]float32, int) ([]port.VectorResult, error) {
	return nil, fmt.Errorf("disk gone")
}
func (failingStore) Count() (int, error) { return 0, fmt.Errorf("disk gone") }

func passage(text, source string, score float64) domain.Passage {
	return domain.Passage{Text: text, SourceID: source, Score: score}
}
