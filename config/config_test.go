package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ingest.ChunkSize != 1500 {
		t.Errorf("default chunk size = %d, want 1500", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("default chunk overlap = %d, want 200", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Ingest.Concurrency <= 0 {
		t.Error("default concurrency must be positive")
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("default dimension = %d, want 1536", cfg.Embedding.Dimension)
	}
	if cfg.Retrieve.TopK <= 0 {
		t.Error("default top_k must be positive")
	}
	// Letters are distributed as PDFs, so they must be ingestable out
	// of the box.
	foundPDF := false
	for _, pattern := range cfg.Ingest.Includes {
		if pattern == "**/*.pdf" {
			foundPDF = true
		}
	}
	if !foundPDF {
		t.Errorf("default includes missing pdf pattern: %v", cfg.Ingest.Includes)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ingest.ChunkSize != 1500 {
		t.Errorf("missing file should yield defaults, got chunk size %d", cfg.Ingest.ChunkSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterchat.yaml")
	content := `
ingest:
  chunk_size: 800
  concurrency: 4
retrieve:
  top_k: 5
embedding:
  provider: mock
  dimension: 16
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ingest.ChunkSize != 800 {
		t.Errorf("chunk_size = %d, want 800", cfg.Ingest.ChunkSize)
	}
	if cfg.Retrieve.TopK != 5 {
		t.Errorf("top_k = %d, want 5", cfg.Retrieve.TopK)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimension != 16 {
		t.Errorf("embedding override not applied: %+v", cfg.Embedding)
	}
	// Untouched sections keep defaults.
	if cfg.Generation.Model != "gpt-4o" {
		t.Errorf("generation model = %s, want default", cfg.Generation.Model)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterchat.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":8080"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Addr != ":8080" {
		t.Errorf("addr = %s, want :8080", loaded.Server.Addr)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 7
	if err := cfg.Save(filepath.Join(dir, "letterchat.yaml")); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Retrieve.TopK != 7 {
		t.Errorf("top_k = %d, want 7", loaded.Retrieve.TopK)
	}
}
