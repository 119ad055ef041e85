package answer_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/answer"
	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/eval"
	"github.com/lexhaven/lexrag/internal/index"
	"github.com/lexhaven/lexrag/internal/index/memory"
)

// fixedEmbedder maps known texts to fixed vectors so retrieval is
// deterministic without a live embedding provider.
type fixedEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallback, nil
}

type recordingGenerator struct {
	response string
	calls    [][]domain.Turn
}

func (g *recordingGenerator) Complete(_ context.Context, messages []domain.Turn, _ float32) (string, error) {
	g.calls = append(g.calls, messages)
	return g.response, nil
}

func TestAnswer_ValidWillQuestionAgainstSeededIndex(t *testing.T) {
	question := "What are the requirements for a valid will in this jurisdiction?"
	passages := eval.Benchmark[2].Passages

	idx := memory.New()
	records := []index.Record{
		{ID: "will-1", Vector: []float32{1, 0, 0}, Source: "succession.pdf", Text: passages[0]},
		{ID: "will-2", Vector: []float32{0.9, 0.1, 0}, Source: "succession.pdf", Text: passages[1]},
		{ID: "noise", Vector: []float32{0, 0, 1}, Source: "lease.pdf", Text: "a lease confers an estate in land"},
	}
	if err := idx.Upsert(context.Background(), records); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	embedder := &fixedEmbedder{
		vectors:  map[string][]float32{question: {1, 0, 0}},
		fallback: []float32{0, 1, 0},
	}
	gen := &recordingGenerator{response: "A valid will must be signed by the testator and attested by two or more witnesses."}

	svc := answer.NewService(embedder, idx, gen, zap.NewNop(), answer.WithTopK(2))

	got, contexts, err := svc.Answer(context.Background(), question)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if len(contexts) != 2 {
		t.Fatalf("got %d context chunks, want 2", len(contexts))
	}
	if contexts[0] != passages[0] || contexts[1] != passages[1] {
		t.Errorf("contexts are not the two will passages in similarity order")
	}

	prompt := gen.calls[0][1].Content
	for _, p := range passages {
		if !strings.Contains(prompt, p) {
			t.Errorf("prompt missing passage %q...", p[:40])
		}
	}
	if strings.Contains(prompt, "lease confers an estate") {
		t.Error("prompt contains the off-topic passage")
	}

	if eval.Faithfulness(got, contexts) < 0.5 {
		t.Errorf("expected the grounded answer to score faithful against its context")
	}
}
