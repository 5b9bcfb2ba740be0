package embedding

import (
	"context"
	"math"
	"testing"
)

func TestSimulatedDeterministic(t *testing.T) {
	e, err := NewSimulatedEngine(0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	a1, err := e.Embed(ctx, "fix the login bug")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := e.Embed(ctx, "fix the login bug")
	if err != nil {
		t.Fatal(err)
	}

	if len(a1) != simulatedDimensions {
		t.Fatalf("got %d dimensions, want %d", len(a1), simulatedDimensions)
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("same text produced different vectors at index %d: %v != %v", i, a1[i], a2[i])
		}
	}
}

func TestSimulatedUnitLength(t *testing.T) {
	e, _ := NewSimulatedEngine(64)
	vec, err := e.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(mag)-1) > 1e-5 {
		t.Errorf("vector magnitude = %v, want 1", math.Sqrt(mag))
	}
}

func TestSimulatedDistinctTexts(t *testing.T) {
	e, _ := NewSimulatedEngine(0)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "first text")
	b, _ := e.Embed(ctx, "second text")

	sim, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatal(err)
	}
	// Independent random unit vectors in high dimensions are nearly
	// orthogonal; identical would be 1.0.
	if sim > 0.5 {
		t.Errorf("distinct texts too similar: %v", sim)
	}
}

func TestSimulatedEmbedBatch(t *testing.T) {
	e, _ := NewSimulatedEngine(0)
	ctx := context.Background()

	texts := []string{"one", "two", "three", "one"}
	vecs, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vecs), len(texts))
	}

	// Batch results match single embeds, and duplicates agree.
	single, _ := e.Embed(ctx, "one")
	for i := range single {
		if vecs[0][i] != single[i] {
			t.Fatal("batch result differs from single embed")
		}
		if vecs[0][i] != vecs[3][i] {
			t.Fatal("duplicate texts differ within batch")
		}
	}
}

func TestNewSimulatedEngineRejectsNegative(t *testing.T) {
	if _, err := NewSimulatedEngine(-1); err == nil {
		t.Error("expected error for negative dimensions")
	}
}
