package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"letterchat/internal/domain"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *OpenAIEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("TEST_EMBED_KEY", "test-key")
	e, err := NewOpenAIEmbedder(Options{
		BaseURL:   server.URL,
		APIKeyEnv: "TEST_EMBED_KEY",
		Model:     "text-embedding-3-small",
		Dimension: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		// Respond with the data slice reversed; the client must reorder
		// by the index field.
		resp := embeddingResponse{}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingData{
				Index:     i,
				Embedding: []float32{float32(i), 0, 0},
			})
		}
		json.NewEncoder(w).Encode(resp)
	})

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: first component %v", i, v[0])
		}
	}
}

func TestEmbedRetriesTransientFailure(t *testing.T) {
	calls := 0
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Index: 0, Embedding: []float32{1, 2, 3}}},
		})
	})

	vector, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
	if len(vector) != 3 {
		t.Errorf("got vector of length %d, want 3", len(vector))
	}
}

func TestEmbedUnavailableAfterRetries(t *testing.T) {
	calls := 0
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("got %v, want ErrEmbeddingUnavailable", err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestEmbedDoesNotRetryClientError(t *testing.T) {
	calls := 0
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("got %v, want ErrEmbeddingUnavailable", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1 (4xx is not retryable)", calls)
	}
}

func TestEmbedSendsAuthAndModel(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "text-embedding-3-small" {
			t.Errorf("unexpected model: %q", req.Model)
		}
		json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingData{{Index: 0, Embedding: []float32{0, 0, 0}}},
		})
	})

	if _, err := e.Embed(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a, err := e.Embed(context.Background(), "index funds")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(context.Background(), "index funds")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mock embedding not deterministic at %d", i)
		}
	}
}

func TestMockEmbedderSpreadsMultibyteRunes(t *testing.T) {
	e := NewMockEmbedder(2)
	// Two runes, so both slots must be filled even though the first
	// rune spans two bytes.
	v, err := e.Embed(context.Background(), "éa")
	if err != nil {
		t.Fatal(err)
	}
	if v[0] == 0 || v[1] == 0 {
		t.Errorf("runes not spread across slots: %v", v)
	}
	if v[1] != float32('a')/1000.0 {
		t.Errorf("second slot = %v, want %v", v[1], float32('a')/1000.0)
	}
}
