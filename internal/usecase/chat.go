package usecase

import (
	"context"
	"fmt"
	"strings"

	"letterchat/internal/domain"
	"letterchat/internal/logger"
	"letterchat/internal/port"
)

// FallbackAnswer is returned to the user whenever the pipeline fails
// internally. End users get graceful degradation, never a raw error.
const FallbackAnswer = "Sorry, I could not produce an answer right now. Please try again in a moment."

// ChatUseCase is the single entry point the external shell calls: it wires
// retrieval, prompt composition and generation. It holds no per-question
// state, so concurrent calls are independent.
type ChatUseCase struct {
	retriever *RetrieveUseCase
	composer  *Composer
	llm       port.LLM
}

func NewChatUseCase(retriever *RetrieveUseCase, composer *Composer, llm port.LLM) *ChatUseCase {
	return &ChatUseCase{
		retriever: retriever,
		composer:  composer,
		llm:       llm,
	}
}

// Answer retrieves relevant passages, composes the prompt and generates an
// answer. The returned string is always safe to show to the user: on any
// internal failure it carries the fallback message while the error holds
// the classified cause for the caller's status mapping and logs.
func (u *ChatUseCase) Answer(ctx context.Context, question string) (string, error) {
	return u.AnswerWithHistory(ctx, nil, question)
}

// AnswerWithHistory is Answer with explicit prior turns. History is an
// input, not state: the orchestrator remembers nothing between calls.
func (u *ChatUseCase) AnswerWithHistory(ctx context.Context, history []domain.ChatTurn, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return FallbackAnswer, fmt.Errorf("empty question")
	}

	passages, err := u.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return u.degrade("retrieve", question, err)
	}
	logger.Debug("retrieved %d passages for question %q", len(passages), question)

	prompt, err := u.composer.ComposeWithHistory(history, passages, question)
	if err != nil {
		return u.degrade("compose", question, err)
	}

	answer, err := u.llm.Generate(ctx, u.composer.SystemPrompt(), prompt)
	if err != nil {
		return u.degrade("generate", question, err)
	}
	return answer, nil
}

// degrade logs the classified failure and returns the fallback answer
// together with the original error.
func (u *ChatUseCase) degrade(stage, question string, err error) (string, error) {
	logger.Error("answer failed: stage=%s kind=%s question=%q err=%v",
		stage, domain.FailureKind(err), question, err)
	return FallbackAnswer, err
}
