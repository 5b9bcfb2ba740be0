package embedding

import (
	"context"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
		{name: "mismatch", a: []float32{1}, b: []float32{1, 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopK(t *testing.T) {
	query := []float32{1, 0, 0}
	corpus := [][]float32{
		{0, 1, 0},     // orthogonal
		{1, 0, 0},     // identical
		{0.9, 0.1, 0}, // close
		{1, 0},        // wrong dimensions, skipped
		{-1, 0, 0},    // opposite
	}

	results := TopK(query, corpus, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Index != 1 {
		t.Errorf("best match index = %d, want 1", results[0].Index)
	}
	if results[1].Index != 2 {
		t.Errorf("second match index = %d, want 2", results[1].Index)
	}
}

func TestTopKDefaultsK(t *testing.T) {
	corpus := [][]float32{{1, 0}, {0, 1}}
	results := TopK([]float32{1, 0}, corpus, 0)
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestNewEngineSimulated(t *testing.T) {
	e, err := NewEngine(Config{Provider: "simulated", Dimensions: 32})
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 32 {
		t.Errorf("dimensions = %d, want 32", e.Dimensions())
	}
	if e.Name() != "simulated" {
		t.Errorf("name = %q", e.Name())
	}

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 32 {
		t.Errorf("vector length = %d, want 32", len(vec))
	}
}

func TestNewEngineUnknownProvider(t *testing.T) {
	if _, err := NewEngine(Config{Provider: "quantum"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
