// Package embedding generates vector embeddings for semantic memory search.
//
// Two backends: a local Ollama server for real embeddings, and a simulated
// engine that derives deterministic vectors from the text itself so the rest
// of the system works without any model running.
package embedding

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/cometalabs/devflow/internal/debug"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced vectors.
	Dimensions() int

	// Name returns the engine name for logging and metadata.
	Name() string
}

// HealthChecker is implemented by engines backed by an external service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds embedding engine configuration.
type Config struct {
	// Provider: "ollama" or "simulated"
	Provider string `json:"provider"`

	OllamaEndpoint string `json:"ollama_endpoint"`
	OllamaModel    string `json:"ollama_model"`

	// Dimensions for the simulated engine. Ignored for Ollama, whose model
	// determines the width.
	Dimensions int `json:"dimensions"`

	// CacheTTLSeconds controls the embed cache. Zero means the default.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
}

// DefaultConfig returns defaults, honoring DEVFLOW_EMBEDDINGS for the
// provider. The simulated engine is the default so hooks never block on a
// model server that isn't there.
func DefaultConfig() Config {
	provider := os.Getenv("DEVFLOW_EMBEDDINGS")
	if provider == "" {
		provider = "simulated"
	}
	return Config{
		Provider:       provider,
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		Dimensions:     simulatedDimensions,
	}
}

// NewEngine creates an embedding engine from configuration. The result is
// wrapped in a TTL cache.
func NewEngine(cfg Config) (Engine, error) {
	var engine Engine
	var err error

	switch cfg.Provider {
	case "ollama":
		engine, err = NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel)
	case "simulated", "":
		engine, err = NewSimulatedEngine(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'ollama' or 'simulated')", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	debug.Logf("embedding: engine %s ready (%d dimensions)\n", engine.Name(), engine.Dimensions())
	return NewCachedEngine(engine, cfg.CacheTTLSeconds), nil
}

// CosineSimilarity returns the cosine similarity of two vectors, between -1
// and 1. Zero-magnitude vectors yield 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d != %d", len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// SimilarityResult is one hit from TopK: the corpus index and its score.
type SimilarityResult struct {
	Index      int
	Similarity float64
}

// TopK returns the k corpus vectors most similar to the query, best first.
// Vectors with mismatched dimensions are skipped.
func TopK(query []float32, corpus [][]float32, k int) []SimilarityResult {
	if k <= 0 {
		k = 10
	}

	results := make([]SimilarityResult, 0, len(corpus))
	for i, vec := range corpus {
		sim, err := CosineSimilarity(query, vec)
		if err != nil {
			continue
		}
		results = append(results, SimilarityResult{Index: i, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
