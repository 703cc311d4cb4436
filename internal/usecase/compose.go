package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"letterchat/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// passageDelimiter separates passages inside the context block.
const passageDelimiter = "\n---\n"

// Composer assembles generation prompts from retrieved passages and the
// user question. Composition is pure string assembly: identical inputs
// produce byte-identical prompts.
type Composer struct {
	systemPrompt string
	maxChars     int
	tmpl         *template.Template
}

// NewComposer loads the embedded prompt templates. maxChars bounds the
// composed prompt length in runes; 0 disables the bound. When the bound
// is exceeded, the lowest-ranked passages are dropped first so the most
// relevant context survives.
func NewComposer(maxChars int) (*Composer, error) {
	system, err := promptTemplates.ReadFile("templates/system_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("system prompt template not found: %w", err)
	}

	answer, err := promptTemplates.ReadFile("templates/answer_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("answer prompt template not found: %w", err)
	}

	tmpl, err := template.New("answer").Parse(string(answer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse answer template: %w", err)
	}

	return &Composer{
		systemPrompt: strings.TrimRight(string(system), "\n"),
		maxChars:     maxChars,
		tmpl:         tmpl,
	}, nil
}

// SystemPrompt returns the fixed system instruction.
func (c *Composer) SystemPrompt() string {
	return c.systemPrompt
}

// Compose builds the user prompt from the passages (in the order given)
// and the question.
func (c *Composer) Compose(passages []domain.Passage, question string) (string, error) {
	return c.ComposeWithHistory(nil, passages, question)
}

// ComposeWithHistory additionally includes prior turns, supplied
// explicitly by the caller. Passages are never truncated; if the prompt
// exceeds the budget, whole passages are dropped from the back of the
// ranked list. ErrPromptTooLarge is returned only once a single passage
// plus the question still exceeds the budget.
func (c *Composer) ComposeWithHistory(history []domain.ChatTurn, passages []domain.Passage, question string) (string, error) {
	n := len(passages)
	for {
		prompt, err := c.render(history, passages[:n], question)
		if err != nil {
			return "", err
		}
		if c.maxChars <= 0 || utf8.RuneCountInString(prompt) <= c.maxChars {
			return prompt, nil
		}
		if n <= 1 {
			return "", fmt.Errorf("%w: %d runes with %d passage(s), budget %d",
				domain.ErrPromptTooLarge, utf8.RuneCountInString(prompt), n, c.maxChars)
		}
		n--
	}
}

func (c *Composer) render(history []domain.ChatTurn, passages []domain.Passage, question string) (string, error) {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	var historyBlock strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&historyBlock, "User: %s\nAssistant: %s\n", turn.Question, turn.Answer)
	}

	data := struct {
		Context  string
		History  string
		Question string
	}{
		Context:  strings.Join(texts, passageDelimiter),
		History:  strings.TrimRight(historyBlock.String(), "\n"),
		Question: question,
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
