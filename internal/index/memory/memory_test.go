package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/index"
)

func TestQuery_OrderedBySimilarity(t *testing.T) {
	x := New()
	ctx := context.Background()

	if err := x.EnsureIndex(ctx, 2); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	err := x.Upsert(ctx, []index.Record{
		{ID: "far", Vector: []float32{0, 1}, Text: "far chunk"},
		{ID: "near", Vector: []float32{1, 0.01}, Text: "near chunk"},
		{ID: "mid", Vector: []float32{1, 1}, Text: "mid chunk"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := x.Query(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	want := []string{"near chunk", "mid chunk", "far chunk"}
	for i, w := range want {
		if matches[i].Text != w {
			t.Errorf("match[%d] = %q, want %q", i, matches[i].Text, w)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted descending at %d", i)
		}
	}
}

func TestQuery_TopKLimit(t *testing.T) {
	x := New()
	ctx := context.Background()

	err := x.Upsert(ctx, []index.Record{
		{Vector: []float32{1, 0}, Text: "a"},
		{Vector: []float32{0.9, 0.1}, Text: "b"},
		{Vector: []float32{0.8, 0.2}, Text: "c"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := x.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
}

func TestQuery_Empty(t *testing.T) {
	x := New()

	matches, err := x.Query(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	x := New()
	ctx := context.Background()

	if err := x.EnsureIndex(ctx, 3); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	err := x.Upsert(ctx, []index.Record{{Vector: []float32{1, 0}, Text: "short"}})
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestEnsureIndex_DimensionConflict(t *testing.T) {
	x := New()
	ctx := context.Background()

	if err := x.EnsureIndex(ctx, 4); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if err := x.EnsureIndex(ctx, 4); err != nil {
		t.Fatalf("EnsureIndex same dim: %v", err)
	}
	if err := x.EnsureIndex(ctx, 8); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %f, want %f", got, tc.want)
			}
		})
	}
}
