package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexhaven/lexrag/internal/domain"
)

// LLMSummarizer extracts question-relevant facts from retrieved chunks with a
// dedicated completion call, typically on a cheaper model than the final
// answer.
type LLMSummarizer struct {
	generator Generator
}

// NewLLMSummarizer creates a summarizer backed by the given generator.
func NewLLMSummarizer(generator Generator) *LLMSummarizer {
	return &LLMSummarizer{generator: generator}
}

// Summarize condenses chunks into a bulleted fact list constrained to the
// documents' content.
func (s *LLMSummarizer) Summarize(ctx context.Context, question string, chunks []string) (string, error) {
	contextString := strings.Join(chunks, "\n\n---\n\n")

	text, err := s.generator.Complete(ctx, []domain.Turn{
		{Role: domain.RoleSystem, Content: summarizeSystemPrompt},
		{Role: domain.RoleUser, Content: summarizeUserPrompt(question, contextString)},
	}, 0)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(text), nil
}
