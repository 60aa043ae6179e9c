package postprocessors

import "strings"

// WhitespaceNormalizer normalizes whitespace in chunks. Chunks that are
// nothing but whitespace are dropped.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process rewrites each chunk's content with normalized whitespace.
// Offsets keep pointing at the original document span.
func (w *WhitespaceNormalizer) Process(chunks []Chunk) []Chunk {
	result := make([]Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		content := normalizeWhitespace(chunk.Content)
		if content == "" {
			continue
		}
		chunk.Content = content
		result = append(result, chunk)
	}
	return result
}

func normalizeWhitespace(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	// Collapse runs of spaces and tabs within each line, trim the line,
	// and squeeze runs of blank lines down to one (a paragraph break).
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && len(out) > 0 && out[len(out)-1] == "" {
			continue
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 5, between the chunker and the deduplicator.
func (w *WhitespaceNormalizer) Order() int {
	return 5
}

// DeduplicatorConfig tunes what counts as a duplicate.
type DeduplicatorConfig struct {
	// MinDuplicateLength exempts chunks shorter than this from the
	// duplicate check; short fragments repeat legitimately.
	MinDuplicateLength int
}

// DefaultDeduplicatorConfig returns the settings DefaultPipeline uses.
func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{
		MinDuplicateLength: 50,
	}
}

// Deduplicator removes exact-duplicate chunks, which overlap plus
// repeated boilerplate (headers, footers) otherwise produces. Chunks
// shorter than MinDuplicateLength pass through unchecked.
type Deduplicator struct {
	config DeduplicatorConfig
}

// Verify interface compliance
var _ PostProcessor = (*Deduplicator)(nil)

// NewDeduplicator creates a new deduplicator with the given config.
func NewDeduplicator(config DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{config: config}
}

// Process drops chunks whose normalized content was already seen.
func (d *Deduplicator) Process(chunks []Chunk) []Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	seen := make(map[string]struct{}, len(chunks))
	var result []Chunk

	for _, chunk := range chunks {
		if len(chunk.Content) >= d.config.MinDuplicateLength {
			key := strings.ToLower(strings.TrimSpace(chunk.Content))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		result = append(result, chunk)
	}
	return result
}

// Name returns the processor name.
func (d *Deduplicator) Name() string {
	return "deduplicator"
}

// Order returns 10 so dedup sees normalized content.
func (d *Deduplicator) Order() int {
	return 10
}
