package port

import "context"

// LLM represents a text-completion model. Each call is independent; the
// implementation must not keep conversational state between calls.
type LLM interface {
	// Generate produces a completion for the user prompt under the given
	// system prompt.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
