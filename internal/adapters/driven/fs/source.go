package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/raglab-core/internal/core/domain"
	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
	"github.com/custodia-labs/raglab-core/internal/extractors"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source reads a directory tree into a document batch. It lets whole
// directories be ingested in one call instead of uploading files one by
// one through the API.
type Source struct {
	root       string
	config     *Config
	extractors *extractors.Registry
}

// Config contains configuration for the filesystem source.
type Config struct {
	// Extensions is a list of file extensions to include.
	// Empty means every file the extractor registry recognises.
	Extensions []string

	// ExcludeGlobs is a list of path patterns to skip. Patterns ending
	// in "/" exclude whole subtrees.
	ExcludeGlobs []string

	// MaxFileSize is the maximum file size in bytes to read.
	// Default is 10MB.
	MaxFileSize int64
}

// DefaultConfig returns the default filesystem source configuration.
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{},
		ExcludeGlobs: []string{
			".git/",
			"node_modules/",
			"vendor/",
		},
		MaxFileSize: 10 << 20,
	}
}

// NewSource creates a filesystem source rooted at dir. A nil registry
// falls back to the built-in extractors, a nil config to DefaultConfig.
func NewSource(dir string, registry *extractors.Registry, config *Config) *Source {
	if registry == nil {
		registry = extractors.DefaultRegistry()
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Source{
		root:       dir,
		config:     config,
		extractors: registry,
	}
}

// Documents walks the root and returns every extractable file as a raw
// document. WalkDir visits entries in lexical order, so the batch order
// is stable across runs.
func (s *Source) Documents(ctx context.Context) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && s.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if s.excluded(rel) || !s.includeExtension(rel) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		if info.Size() > s.config.MaxFileSize {
			return nil
		}

		// An empty MIME type would still hit the */* fallback extractor,
		// so unknown extensions are skipped before the registry lookup.
		mimeType := mimeTypeFor(rel)
		if mimeType == "" {
			return nil
		}
		extractor := s.extractors.Get(mimeType)
		if extractor == nil {
			return nil
		}

		content, readErr := os.ReadFile(p)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", rel, readErr)
		}
		text, extractErr := extractor.Extract(content)
		if extractErr != nil {
			return fmt.Errorf("extract %s: %w", rel, extractErr)
		}

		docs = append(docs, domain.RawDocument{
			Filename: rel,
			Content:  []byte(text),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// excluded checks a slash-separated relative path against the exclude
// patterns. Directory paths arrive with a trailing "/".
func (s *Source) excluded(rel string) bool {
	for _, pattern := range s.config.ExcludeGlobs {
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(rel, pattern) {
				return true
			}
			continue
		}

		if matched, _ := path.Match(pattern, rel); matched {
			return true
		}
		// Match the basename too so "*.min.js" applies at any depth.
		if matched, _ := path.Match(pattern, path.Base(rel)); matched {
			return true
		}
	}
	return false
}

// includeExtension checks if a file's extension is allowed by configuration.
func (s *Source) includeExtension(rel string) bool {
	if len(s.config.Extensions) == 0 {
		return true
	}

	ext := path.Ext(rel)
	for _, allowed := range s.config.Extensions {
		if ext == allowed || ext == "."+allowed {
			return true
		}
	}
	return false
}

// mimeTypeFor maps a file path to the MIME type used for extractor
// selection. Unknown extensions return "" so binaries are skipped rather
// than ingested as garbage text.
func mimeTypeFor(rel string) string {
	switch strings.ToLower(path.Ext(rel)) {
	case ".txt", ".text", ".log":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	default:
		return ""
	}
}
