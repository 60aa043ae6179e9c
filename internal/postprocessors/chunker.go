package postprocessors

import "strings"

// ChunkConfig controls how content gets split.
type ChunkConfig struct {
	// MaxChunkSize caps a chunk's length in characters.
	MaxChunkSize int

	// Overlap carries this many trailing characters into the next
	// chunk so facts spanning a boundary survive in one piece.
	Overlap int

	// PreserveSentences prefers breaking after sentence enders.
	PreserveSentences bool

	// PreserveParagraphs prefers breaking at blank lines.
	PreserveParagraphs bool
}

// DefaultChunkConfig returns the chunking defaults. Small chunks keep
// single facts together, which retrieval quality comparisons depend on.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:       500,
		Overlap:            20,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// breakWindow is how far back from the size limit the chunker searches
// for a paragraph or sentence boundary before giving up and cutting at
// a word.
const breakWindow = 100

// Chunker splits extracted text into overlapping, size-bounded chunks.
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) *Chunker {
	return &Chunker{config: config}
}

// Process splits each incoming chunk into size-bounded chunks.
func (c *Chunker) Process(chunks []Chunk) []Chunk {
	var result []Chunk
	position := 0

	for _, chunk := range chunks {
		result = append(result, c.splitText(chunk.Content, chunk.StartOffset, &position)...)
	}
	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0; splitting has to happen before the other
// processors see anything.
func (c *Chunker) Order() int {
	return 0
}

func (c *Chunker) splitText(content string, baseOffset int, position *int) []Chunk {
	if len(content) <= c.config.MaxChunkSize {
		chunk := Chunk{
			Content:     content,
			Position:    *position,
			StartOffset: baseOffset,
			EndOffset:   baseOffset + len(content),
		}
		*position++
		return []Chunk{chunk}
	}

	softBreaks := c.config.PreserveSentences || c.config.PreserveParagraphs

	var chunks []Chunk
	prevEnd := 0
	for start := 0; start < len(content); {
		end := start + c.config.MaxChunkSize
		if end >= len(content) {
			end = len(content)
		} else if softBreaks {
			// A soft break must land past the previous chunk's end,
			// or overlap would rediscover the same boundary and emit
			// duplicate slivers.
			floor := start
			if prevEnd > floor {
				floor = prevEnd
			}
			if floor < end {
				if bp := c.breakNear(content, floor, end); bp > floor {
					end = bp
				}
			}
		}

		chunks = append(chunks, Chunk{
			Content:     content[start:end],
			Position:    *position,
			StartOffset: baseOffset + start,
			EndOffset:   baseOffset + end,
		})
		*position++
		prevEnd = end

		if end >= len(content) {
			break
		}

		// Back up by the overlap, but always advance
		next := end - c.config.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakNear looks for the latest natural boundary inside the window
// ending at maxEnd. The window never reaches back past floor.
// Preference order: paragraph break, sentence end, word gap. Returns
// maxEnd when the window has no boundary at all.
func (c *Chunker) breakNear(content string, floor, maxEnd int) int {
	from := maxEnd - breakWindow
	if from < floor {
		from = floor
	}
	window := content[from:maxEnd]

	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
			return from + idx + 2
		}
	}

	if c.config.PreserveSentences {
		// Walk backwards looking for a terminator followed by whitespace
		for i := len(window) - 1; i >= 1; i-- {
			if window[i] != ' ' && window[i] != '\n' {
				continue
			}
			if t := window[i-1]; t == '.' || t == '!' || t == '?' {
				return from + i + 1
			}
		}
	}

	if idx := strings.LastIndexByte(window, ' '); idx >= 0 {
		return from + idx + 1
	}

	return maxEnd
}
