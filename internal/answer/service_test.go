package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/index"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vector, s.err
}

type stubIndex struct {
	matches []index.Match
	err     error
	topK    int
}

func (s *stubIndex) Query(_ context.Context, _ []float32, topK int) ([]index.Match, error) {
	s.topK = topK
	return s.matches, s.err
}

type stubGenerator struct {
	response string
	err      error
	calls    [][]domain.Turn
	temps    []float32
}

func (s *stubGenerator) Complete(_ context.Context, messages []domain.Turn, temperature float32) (string, error) {
	s.calls = append(s.calls, messages)
	s.temps = append(s.temps, temperature)
	return s.response, s.err
}

func matchesFor(texts ...string) []index.Match {
	out := make([]index.Match, len(texts))
	for i, t := range texts {
		out[i] = index.Match{Text: t, Source: "doc.pdf", Score: 1.0 - float64(i)*0.1}
	}
	return out
}

func TestAnswer_ContextPreservesRetrievalOrder(t *testing.T) {
	gen := &stubGenerator{response: "answer"}
	svc := NewService(
		&stubEmbedder{vector: []float32{1, 0}},
		&stubIndex{matches: matchesFor("first", "second", "third")},
		gen,
		zap.NewNop(),
	)

	answer, chunks, err := svc.Answer(context.Background(), "question")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "answer" {
		t.Errorf("answer = %q", answer)
	}
	if len(chunks) != 3 || chunks[0] != "first" || chunks[1] != "second" || chunks[2] != "third" {
		t.Errorf("chunks = %v, want retrieval order preserved", chunks)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.calls))
	}
	prompt := gen.calls[0][1].Content
	if !strings.Contains(prompt, "first\n\nsecond\n\nthird") {
		t.Errorf("context not joined in retrieval order:\n%s", prompt)
	}
	if !strings.Contains(prompt, "answer this question: question") {
		t.Errorf("question missing from prompt:\n%s", prompt)
	}
}

func TestAnswer_SystemPromptAndTemperature(t *testing.T) {
	gen := &stubGenerator{response: "answer"}
	svc := NewService(
		&stubEmbedder{vector: []float32{1}},
		&stubIndex{matches: matchesFor("ctx")},
		gen,
		zap.NewNop(),
	)

	if _, _, err := svc.Answer(context.Background(), "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	msgs := gen.calls[0]
	if msgs[0].Role != domain.RoleSystem {
		t.Errorf("first message role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "legal research chatbot") {
		t.Errorf("unexpected system prompt: %q", msgs[0].Content)
	}
	if gen.temps[0] != 0 {
		t.Errorf("temperature = %v, want 0", gen.temps[0])
	}
}

func TestAnswer_ZeroMatchesStillCallsGenerator(t *testing.T) {
	gen := &stubGenerator{response: "I cannot answer"}
	svc := NewService(
		&stubEmbedder{vector: []float32{1}},
		&stubIndex{},
		gen,
		zap.NewNop(),
	)

	answer, chunks, err := svc.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "I cannot answer" {
		t.Errorf("answer = %q", answer)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks = %v, want empty", chunks)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1 even with no matches", len(gen.calls))
	}
	if !strings.Contains(gen.calls[0][1].Content, "No relevant documents were found.") {
		t.Errorf("empty-retrieval context missing:\n%s", gen.calls[0][1].Content)
	}
}

func TestAnswer_TopKConfigurable(t *testing.T) {
	idx := &stubIndex{matches: matchesFor("a")}
	svc := NewService(&stubEmbedder{vector: []float32{1}}, idx, &stubGenerator{response: "x"},
		zap.NewNop(), WithTopK(7))

	if _, _, err := svc.Answer(context.Background(), "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if idx.topK != 7 {
		t.Errorf("index queried with topK=%d, want 7", idx.topK)
	}
}

func TestAnswer_EmbedFailureAborts(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewService(
		&stubEmbedder{err: errors.New("boom")},
		&stubIndex{},
		gen,
		zap.NewNop(),
	)

	if _, _, err := svc.Answer(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	if len(gen.calls) != 0 {
		t.Errorf("generator called after embed failure")
	}
}

func TestAnswer_GeneratorFailureSurfaces(t *testing.T) {
	svc := NewService(
		&stubEmbedder{vector: []float32{1}},
		&stubIndex{matches: matchesFor("ctx")},
		&stubGenerator{err: domain.ErrAnswerProviderError},
		zap.NewNop(),
	)

	_, _, err := svc.Answer(context.Background(), "q")
	if !errors.Is(err, domain.ErrAnswerProviderError) {
		t.Errorf("err = %v, want ErrAnswerProviderError", err)
	}
}

func TestAnswer_RerankTruncates(t *testing.T) {
	gen := &stubGenerator{response: "x"}
	svc := NewService(
		&stubEmbedder{vector: []float32{1}},
		&stubIndex{matches: matchesFor("a", "b", "c", "d")},
		gen,
		zap.NewNop(),
		WithReranker(TopN{N: 2}),
	)

	_, chunks, err := svc.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "a" || chunks[1] != "b" {
		t.Errorf("chunks = %v, want top-2 in order", chunks)
	}
}

func TestAnswer_SummarizerFeedsFinalPrompt(t *testing.T) {
	// One generator serves both calls: first the summarizer, then the final
	// answer. Distinguish them by system prompt.
	gen := &stubGenerator{response: "- fact one"}
	svc := NewService(
		&stubEmbedder{vector: []float32{1}},
		&stubIndex{matches: matchesFor("a", "b")},
		gen,
		zap.NewNop(),
		WithSummarizer(NewLLMSummarizer(gen)),
	)

	if _, _, err := svc.Answer(context.Background(), "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if len(gen.calls) != 2 {
		t.Fatalf("generator called %d times, want 2 (summarize + answer)", len(gen.calls))
	}
	if !strings.Contains(gen.calls[0][0].Content, "legal fact extractor") {
		t.Errorf("first call is not the summarizer prompt: %q", gen.calls[0][0].Content)
	}
	if !strings.Contains(gen.calls[0][1].Content, "a\n\n---\n\nb") {
		t.Errorf("summarizer did not join chunks with separator:\n%s", gen.calls[0][1].Content)
	}
	if !strings.Contains(gen.calls[1][0].Content, "- fact one") {
		t.Errorf("final prompt missing summarized context:\n%s", gen.calls[1][0].Content)
	}
	if gen.temps[0] != 0 || gen.temps[1] != 0 {
		t.Errorf("temperatures = %v, want all 0", gen.temps)
	}
}

func TestAnswer_SummarizerSkippedOnEmptyRetrieval(t *testing.T) {
	gen := &stubGenerator{response: "refusal"}
	svc := NewService(
		&stubEmbedder{vector: []float32{1}},
		&stubIndex{},
		gen,
		zap.NewNop(),
		WithSummarizer(NewLLMSummarizer(gen)),
	)

	if _, _, err := svc.Answer(context.Background(), "q"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if len(gen.calls) != 1 {
		t.Fatalf("generator called %d times, want 1 (summarizer skipped)", len(gen.calls))
	}
	if !strings.Contains(gen.calls[0][0].Content, "No relevant documents were found.") {
		t.Errorf("final prompt missing fixed no-context string:\n%s", gen.calls[0][0].Content)
	}
}

func TestTopN_ShortInputUntouched(t *testing.T) {
	out, err := TopN{N: 5}.Rerank(context.Background(), "q", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Rerank: %v", err)
	}
	if len(out) != 2 || out[0] != "a" || out[1] != "b" {
		t.Errorf("out = %v", out)
	}
}
