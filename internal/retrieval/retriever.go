// Package retrieval turns a user query into ranked resume chunks: the query
// is embedded remotely, the vector index is searched within a configured
// namespace, and matches are mapped into domain chunks with provenance
// metadata.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"portfolio-rag/internal/domain"
)

const (
	defaultTopK = 5
	minTopK     = 1
	maxTopK     = 20
)

// Embedder produces a query embedding via a remote inference call.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index searches the vector index for nearest neighbors of an embedding.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int, namespace string) ([]domain.IndexMatch, error)
}

// EmbeddingError wraps a failed or malformed embedding call.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("retrieval: embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// RetrievalError wraps a failed or malformed vector index query.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval: index query failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Retriever resolves queries against the vector index. Immutable after
// construction and safe for concurrent use.
type Retriever struct {
	embedder  Embedder
	index     Index
	namespace string
	topK      int
}

// NewRetriever builds a Retriever over the given embedder and index,
// restricted to one index namespace. defaultK is used when a caller passes a
// non-positive topK; non-positive defaultK falls back to 5.
func NewRetriever(embedder Embedder, index Index, namespace string, defaultK int) (*Retriever, error) {
	if embedder == nil {
		return nil, errors.New("retrieval: embedder must not be nil")
	}
	if index == nil {
		return nil, errors.New("retrieval: index must not be nil")
	}
	if strings.TrimSpace(namespace) == "" {
		return nil, errors.New("retrieval: namespace must not be empty")
	}
	if defaultK <= 0 {
		defaultK = defaultTopK
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		namespace: namespace,
		topK:      clampTopK(defaultK),
	}, nil
}

// Retrieve embeds the query and returns up to topK chunks ordered by
// descending similarity, as ranked by the index. topK <= 0 selects the
// configured default; out-of-range values are clamped to [1, 20].
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = r.topK
	}
	topK = clampTopK(topK)

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	if len(vector) == 0 {
		return nil, &EmbeddingError{Err: errors.New("empty embedding vector")}
	}

	matches, err := r.index.Query(ctx, vector, topK, r.namespace)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	chunks := make([]domain.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, matchToChunk(m))
	}
	return chunks, nil
}

// matchToChunk lifts the text payload out of the match metadata. A match
// without text yields an empty-string chunk rather than an error; context
// assembly handles it.
func matchToChunk(m domain.IndexMatch) domain.RetrievedChunk {
	text := ""
	metadata := make(map[string]any, len(m.Metadata))
	for k, v := range m.Metadata {
		if k == "text" {
			if s, ok := v.(string); ok {
				text = s
			}
			continue
		}
		metadata[k] = v
	}
	return domain.RetrievedChunk{
		ID:       m.ID,
		Score:    m.Score,
		Text:     text,
		Metadata: metadata,
	}
}

func clampTopK(k int) int {
	if k < minTopK {
		return minTopK
	}
	if k > maxTopK {
		return maxTopK
	}
	return k
}
