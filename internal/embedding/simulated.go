package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const simulatedDimensions = 256

// SimulatedEngine derives deterministic embeddings from the text itself: the
// FNV-1a hash of the text seeds a PRNG that fills the vector, which is then
// normalized to unit length. The same text always maps to the same vector,
// so cosine scores are stable across runs and across processes, which is all
// the memory search needs when no real model is available.
type SimulatedEngine struct {
	dims int
}

// NewSimulatedEngine creates a simulated engine with the given vector width.
func NewSimulatedEngine(dims int) (*SimulatedEngine, error) {
	if dims == 0 {
		dims = simulatedDimensions
	}
	if dims < 0 {
		return nil, fmt.Errorf("invalid dimensions: %d", dims)
	}
	return &SimulatedEngine{dims: dims}, nil
}

func (e *SimulatedEngine) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dims)
	var mag float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		mag += v * v
	}

	// Normalize to unit length so dot product equals cosine similarity.
	if mag > 0 {
		norm := float32(1 / math.Sqrt(mag))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec, nil
}

func (e *SimulatedEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, text := range texts {
		g.Go(func() error {
			v, err := e.Embed(ctx, text)
			if err != nil {
				return fmt.Errorf("embedding text %d: %w", i, err)
			}
			vecs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vecs, nil
}

func (e *SimulatedEngine) Dimensions() int {
	return e.dims
}

func (e *SimulatedEngine) Name() string {
	return "simulated"
}
