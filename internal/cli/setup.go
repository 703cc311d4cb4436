package cli

import (
	"fmt"
	"time"

	"letterchat/config"
	"letterchat/internal/adapter/embedding"
	"letterchat/internal/adapter/llm"
	"letterchat/internal/adapter/store"
	"letterchat/internal/port"
	"letterchat/internal/usecase"
)

// newEmbedder builds the configured embedder. Ingestion and query share
// one instance so both sides embed into the same vector space.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		return embedding.NewOpenAIEmbedder(embedding.Options{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			Model:     cfg.Embedding.Model,
			Dimension: cfg.Embedding.Dimension,
			BatchSize: cfg.Embedding.BatchSize,
		})
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// openVectorStore opens the persistent index under the root directory.
func openVectorStore(cfg *config.Config, rootDir string) (*store.BoltVectorStore, error) {
	if err := config.EnsureStateDir(rootDir); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	vs, err := store.NewBoltVectorStore(config.IndexDBPath(rootDir), cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}
	return vs, nil
}

// newChat assembles the full question-answering stack. The caller owns
// the returned store and must close it.
func newChat(cfg *config.Config, rootDir string) (*usecase.ChatUseCase, *store.BoltVectorStore, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	vs, err := openVectorStore(cfg, rootDir)
	if err != nil {
		return nil, nil, err
	}

	generator, err := llm.NewOpenAIClient(llm.Options{
		BaseURL:     cfg.Generation.BaseURL,
		APIKeyEnv:   cfg.Generation.APIKeyEnv,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		Timeout:     120 * time.Second,
	})
	if err != nil {
		vs.Close()
		return nil, nil, err
	}

	composer, err := usecase.NewComposer(cfg.Prompt.MaxChars)
	if err != nil {
		vs.Close()
		return nil, nil, err
	}

	retriever := usecase.NewRetrieveUseCase(embedder, vs, cfg.Retrieve.TopK)
	return usecase.NewChatUseCase(retriever, composer, generator), vs, nil
}
