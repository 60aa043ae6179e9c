package postprocessors

import (
	"sort"
	"sync"
)

// Chunk is a span of document text moving through the ingest pipeline.
// Offsets are relative to the original document content.
type Chunk struct {
	Content     string
	Position    int
	StartOffset int
	EndOffset   int
}

// PostProcessor transforms chunks during ingestion.
type PostProcessor interface {
	// Process transforms the chunk list
	Process(chunks []Chunk) []Chunk

	// Name returns the processor name
	Name() string

	// Order determines processing order (lower runs first)
	Order() int
}

// Pipeline chains post-processors sorted by Order, starting with a
// Chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []PostProcessor
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{processors: make([]PostProcessor, 0)}
}

// Add inserts a processor, keeping the chain sorted by Order. Ties keep
// insertion order.
func (p *Pipeline) Add(processor PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	sort.SliceStable(p.processors, func(i, j int) bool {
		return p.processors[i].Order() < p.processors[j].Order()
	})
}

// Process runs raw document content through the chain and returns the
// chunks ready for embedding and indexing.
func (p *Pipeline) Process(content string) []Chunk {
	p.mu.RLock()
	processors := make([]PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.RUnlock()

	chunks := []Chunk{{
		Content:     content,
		Position:    0,
		StartOffset: 0,
		EndOffset:   len(content),
	}}

	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}
	return chunks
}

// List returns processor names in execution order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates a pipeline with the default processors.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Add(NewChunker(DefaultChunkConfig()))
	p.Add(NewWhitespaceNormalizer())
	p.Add(NewDeduplicator(DefaultDeduplicatorConfig()))
	return p
}
