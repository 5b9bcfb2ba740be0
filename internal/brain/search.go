package brain

import (
	"context"
	"fmt"

	"github.com/cometalabs/devflow/internal/embedding"
)

// SearchResult pairs a memory with its similarity score. Score is cosine
// similarity in [-1, 1] for vector search and 0 for LIKE fallback hits.
type SearchResult struct {
	Memory *Memory `json:"memory"`
	Score  float64 `json:"score"`
}

// SearchMemories finds memories relevant to a query. When queryVec is
// non-nil, memories with embeddings are ranked by cosine similarity;
// memories without embeddings and vector-less stores fall back to a
// substring match on content.
func (s *Store) SearchMemories(ctx context.Context, query string, queryVec []float32, limit int) ([]*SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if len(queryVec) > 0 {
		results, err := s.searchByVector(ctx, queryVec, limit)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return results, nil
		}
		// No embedded memories yet; fall through to substring search.
	}
	return s.searchByText(ctx, query, limit)
}

// searchByVector scans embedded memories and ranks by cosine similarity.
// The corpus is small (hooks write a handful of rows per session), so a
// full scan beats maintaining an index.
func (s *Store) searchByVector(ctx context.Context, queryVec []float32, limit int) ([]*SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(session_id, ''), kind, intent, content, embedding, metadata, source, created_at
		FROM memories WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var memories []*Memory
	var vectors [][]float32
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("vector search: scanning: %w", err)
		}
		memories = append(memories, m)
		vectors = append(vectors, m.Embedding)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// TopK skips vectors whose dimensions don't match, which covers rows
	// embedded by an engine that was since reconfigured.
	hits := embedding.TopK(queryVec, vectors, limit)
	results := make([]*SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, &SearchResult{Memory: memories[h.Index], Score: h.Similarity})
	}
	return results, nil
}

// searchByText is the LIKE fallback used when no embeddings are available.
func (s *Store) searchByText(ctx context.Context, query string, limit int) ([]*SearchResult, error) {
	if query == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(session_id, ''), kind, intent, content, embedding, metadata, source, created_at
		FROM memories WHERE content LIKE '%' || ? || '%'
		ORDER BY created_at DESC LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	defer rows.Close()

	var results []*SearchResult
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("text search: scanning: %w", err)
		}
		results = append(results, &SearchResult{Memory: m})
	}
	return results, rows.Err()
}
