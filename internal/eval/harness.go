package eval

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
)

// Answerer generates an answer with the exact context it used.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, []string, error)
}

// Result holds one benchmark question's answer and scores.
type Result struct {
	Question     string
	Answer       string
	Contexts     []string
	Faithfulness float64
	Relevancy    float64
}

// Report aggregates a full benchmark run.
type Report struct {
	Results          []Result
	MeanFaithfulness float64
	MeanRelevancy    float64
}

// Harness runs the benchmark questions through an answering pipeline and
// scores each answer against the context it was grounded in.
type Harness struct {
	answerer Answerer
	cases    []Case
	logger   *zap.Logger
}

// NewHarness creates an evaluation harness over the given cases.
func NewHarness(answerer Answerer, cases []Case, logger *zap.Logger) *Harness {
	return &Harness{answerer: answerer, cases: cases, logger: logger}
}

// Run evaluates every case in order. A failed question aborts the run; a
// partial benchmark is not comparable to a full one.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	for _, c := range h.cases {
		h.logger.Info("evaluating question", zap.String("question", c.Question))

		answer, contexts, err := h.answerer.Answer(ctx, c.Question)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", c.Question, err)
		}

		result := Result{
			Question:     c.Question,
			Answer:       answer,
			Contexts:     contexts,
			Faithfulness: Faithfulness(answer, contexts),
			Relevancy:    AnswerRelevancy(c.Question, answer),
		}
		report.Results = append(report.Results, result)

		h.logger.Info("question scored",
			zap.String("question", c.Question),
			zap.Float64("faithfulness", result.Faithfulness),
			zap.Float64("answer_relevancy", result.Relevancy),
		)
	}

	for _, r := range report.Results {
		report.MeanFaithfulness += r.Faithfulness
		report.MeanRelevancy += r.Relevancy
	}
	if n := float64(len(report.Results)); n > 0 {
		report.MeanFaithfulness /= n
		report.MeanRelevancy /= n
	}

	return report, nil
}

// Render writes the report as an aligned table.
func (r *Report) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUESTION\tFAITHFULNESS\tRELEVANCY")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\n", truncate(res.Question, 60), res.Faithfulness, res.Relevancy)
	}
	fmt.Fprintf(tw, "MEAN\t%.3f\t%.3f\n", r.MeanFaithfulness, r.MeanRelevancy)
	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
