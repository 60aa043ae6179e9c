package extractors

import (
	"strings"
	"sync"
)

// Extractor converts one uploaded file into plain text ready for chunking.
type Extractor interface {
	// Extract returns the text content of the file.
	Extract(content []byte) (string, error)

	// SupportedTypes returns the MIME types this extractor handles.
	// Wildcards are allowed ("text/*", "*/*").
	SupportedTypes() []string

	// Priority orders extractors when several match a type; higher wins.
	Priority() int
}

// Registry selects the extractor for an uploaded file's MIME type.
// When multiple extractors match, the highest priority one is used.
type Registry struct {
	mu         sync.RWMutex
	extractors []Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make([]Extractor, 0),
	}
}

// Register adds an extractor. Extractors are stored and later selected
// by priority.
func (r *Registry) Register(extractor Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = append(r.extractors, extractor)
}

// Get retrieves the best-matching extractor for a MIME type, or nil when
// none is registered for it. Priority ties go to the earliest
// registration.
func (r *Registry) Get(mimeType string) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Extractor
	for _, e := range r.extractors {
		if !matchesMIMEType(e.SupportedTypes(), mimeType) {
			continue
		}
		if best == nil || e.Priority() > best.Priority() {
			best = e
		}
	}
	return best
}

// matchesMIMEType checks if any of the supported types match the given
// MIME type. Parameters like charset are ignored and "text/*" style
// wildcards are honored.
func matchesMIMEType(supportedTypes []string, mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	// Drop any ";charset=..." parameter before comparing
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	for _, supported := range supportedTypes {
		supported = strings.ToLower(strings.TrimSpace(supported))

		if supported == mimeType {
			return true
		}

		// "text/*" style wildcards match on the type prefix
		if strings.HasSuffix(supported, "/*") {
			prefix := supported[:len(supported)-1]
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}

		if supported == "*/*" {
			return true
		}
	}

	return false
}

// DefaultRegistry creates a registry with the built-in extractors
// pre-registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&PlainTextExtractor{})
	r.Register(&MarkdownExtractor{})
	r.Register(&HTMLExtractor{})

	return r
}
