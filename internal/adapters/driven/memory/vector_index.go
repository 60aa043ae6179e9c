// Package memory provides in-process implementations of the driven
// storage ports. They are the default backends for single-instance
// deployments and for tests; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
)

const (
	// DefaultM is the maximum number of graph neighbours per node.
	DefaultM = 16

	// DefaultEfSearch is the candidate list size during search. Larger
	// values trade latency for recall.
	DefaultEfSearch = 48
)

// VectorIndex is an HNSW-backed in-memory vector index. Chunk ids map to
// internal uint64 graph keys; deletion is lazy (the id mappings are
// dropped, the graph node is orphaned) because removing nodes from a
// populated HNSW graph degrades its connectivity. Orphans are reclaimed
// on Clear, which rebuilds the graph from scratch.
type VectorIndex struct {
	mu sync.RWMutex

	cfg    VectorIndexConfig // retained so Clear rebuilds an identically tuned graph
	graph  *hnsw.Graph[uint64]
	chunks map[string]*domain.Chunk
	keys   map[string]uint64 // chunk id -> graph key
	ids    map[uint64]string // graph key -> chunk id

	nextKey uint64
	dims    int // set by the first upsert, reset on Clear
}

// VectorIndexConfig tunes the HNSW graph. Zero values use the defaults.
type VectorIndexConfig struct {
	M        int
	EfSearch int
}

// NewVectorIndex creates an empty index.
func NewVectorIndex(cfg VectorIndexConfig) *VectorIndex {
	if cfg.M <= 0 {
		cfg.M = DefaultM
	}
	if cfg.EfSearch <= 0 {
		cfg.EfSearch = DefaultEfSearch
	}

	idx := &VectorIndex{
		chunks: make(map[string]*domain.Chunk),
		keys:   make(map[string]uint64),
		ids:    make(map[uint64]string),
	}
	idx.cfg = cfg
	idx.graph = newGraph(cfg)
	return idx
}

func newGraph(cfg VectorIndexConfig) *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Ml = 0.25
	return g
}

// Upsert adds or replaces chunks by id. All embeddings in a batch must
// share the index dimensionality, which is fixed by the first chunk ever
// upserted and reset on Clear.
func (x *VectorIndex) Upsert(ctx context.Context, chunks []*domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, chunk := range chunks {
		if chunk == nil || chunk.ID == "" {
			return fmt.Errorf("memory: chunk without id")
		}
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("memory: chunk %s has no embedding", chunk.ID)
		}
		if x.dims == 0 {
			x.dims = len(chunk.Embedding)
		}
		if len(chunk.Embedding) != x.dims {
			return fmt.Errorf("memory: chunk %s has dimension %d, index has %d",
				chunk.ID, len(chunk.Embedding), x.dims)
		}
	}

	for _, chunk := range chunks {
		// Replacing an id orphans its old graph node.
		if oldKey, ok := x.keys[chunk.ID]; ok {
			delete(x.ids, oldKey)
		}

		vec := make([]float32, len(chunk.Embedding))
		copy(vec, chunk.Embedding)
		normalize(vec)

		key := x.nextKey
		x.nextKey++
		x.graph.Add(hnsw.MakeNode(key, vec))

		x.keys[chunk.ID] = key
		x.ids[key] = chunk.ID
		x.chunks[chunk.ID] = chunk
	}
	return nil
}

// Search returns up to k chunks nearest to the embedding, best first.
// Orphaned graph nodes are skipped; the search over-fetches by the
// current orphan count so lazy deletion does not starve results.
func (x *VectorIndex) Search(ctx context.Context, embedding []float32, k int) ([]*domain.RankedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []*domain.RankedChunk{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.chunks) == 0 {
		return []*domain.RankedChunk{}, nil
	}
	if len(embedding) != x.dims {
		return nil, fmt.Errorf("memory: query dimension %d, index has %d", len(embedding), x.dims)
	}

	query := make([]float32, len(embedding))
	copy(query, embedding)
	normalize(query)

	orphans := x.graph.Len() - len(x.keys)
	nodes := x.graph.Search(query, k+orphans)

	ranked := make([]*domain.RankedChunk, 0, k)
	for _, node := range nodes {
		id, ok := x.ids[node.Key]
		if !ok {
			continue // lazily deleted
		}
		chunk, ok := x.chunks[id]
		if !ok {
			continue
		}
		distance := x.graph.Distance(query, node.Value)
		ranked = append(ranked, &domain.RankedChunk{
			Chunk: chunk,
			Score: cosineScore(distance),
		})
		if len(ranked) == k {
			break
		}
	}
	return ranked, nil
}

// Delete removes chunks by id. Unknown ids are ignored. Graph nodes are
// orphaned, not removed.
func (x *VectorIndex) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for _, id := range ids {
		key, ok := x.keys[id]
		if !ok {
			continue
		}
		delete(x.keys, id)
		delete(x.ids, key)
		delete(x.chunks, id)
	}
	return nil
}

// Clear drops every chunk and rebuilds the graph, reclaiming orphans.
func (x *VectorIndex) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.graph = newGraph(x.cfg)
	x.chunks = make(map[string]*domain.Chunk)
	x.keys = make(map[string]uint64)
	x.ids = make(map[uint64]string)
	x.dims = 0
	return nil
}

// Count returns the number of live chunks.
func (x *VectorIndex) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks), nil
}

// HealthCheck always succeeds for the in-process index.
func (x *VectorIndex) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// normalize scales v to unit length in place. Zero vectors are left
// untouched.
func normalize(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// cosineScore maps a cosine distance in [0,2] to a similarity in [0,1].
func cosineScore(distance float32) float64 {
	score := 1 - float64(distance)/2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
