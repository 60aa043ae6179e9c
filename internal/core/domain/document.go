package domain

import "time"

// CharsPerPage is the heuristic used to derive a page count for sources
// that do not report one (plain text, markdown, pasted content).
const CharsPerPage = 3000

// RawDocument is an unprocessed document as produced by a DocumentSource.
type RawDocument struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
	Pages    int    `json:"pages,omitempty"` // 0 means unknown, derived at ingest
}

// Document represents an ingested document. Immutable once chunked;
// destroyed on index clear.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int       `json:"size"` // Byte length of the raw content
	Pages      int       `json:"pages"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunk represents an embedded span of a document. Chunks are owned by the
// vector index; nothing mutates them after creation, and their ids are never
// reissued after a clear.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Position   int       `json:"position"` // Chunk position within document
	Page       int       `json:"page"`
	StartChar  int       `json:"start_char"`
	EndChar    int       `json:"end_char"`
	CreatedAt  time.Time `json:"created_at"`
}

// RankedChunk is a chunk paired with transient retrieval scores. The score
// fields exist only on query results and are never written back to the index.
type RankedChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`

	// Populated by the reranking pipeline only.
	OriginalScore float64 `json:"original_score,omitempty"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	Reranked      bool    `json:"reranked,omitempty"`
}

// DerivePages estimates a page count from content length when the source
// did not report one. Always at least 1 for non-empty content.
func DerivePages(contentLen int) int {
	if contentLen <= 0 {
		return 0
	}
	pages := contentLen / CharsPerPage
	if contentLen%CharsPerPage != 0 {
		pages++
	}
	return pages
}

// PageForOffset maps a character offset within a document to its derived
// page number (1-based).
func PageForOffset(offset int) int {
	if offset < 0 {
		offset = 0
	}
	return offset/CharsPerPage + 1
}
