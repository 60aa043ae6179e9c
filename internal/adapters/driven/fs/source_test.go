package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestSourceDocuments(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.txt", "alpha\r\ncontent")
	writeTestFile(t, root, "docs/guide.md", "# Guide\n\n\n\nBody.")
	writeTestFile(t, root, "image.png", "\x89PNG")
	writeTestFile(t, root, ".git/config", "[core]")

	source := NewSource(root, nil, nil)
	docs, err := source.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Filename != "a.txt" {
		t.Errorf("expected a.txt first, got %s", docs[0].Filename)
	}
	if string(docs[0].Content) != "alpha\ncontent" {
		t.Errorf("expected normalized line endings, got %q", docs[0].Content)
	}
	if docs[1].Filename != "docs/guide.md" {
		t.Errorf("expected docs/guide.md second, got %s", docs[1].Filename)
	}
	if string(docs[1].Content) != "# Guide\n\nBody." {
		t.Errorf("expected collapsed blank lines, got %q", docs[1].Content)
	}
}

func TestSourceDocuments_ExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "notes.txt", "notes")
	writeTestFile(t, root, "guide.md", "# Guide")

	cfg := DefaultConfig()
	cfg.Extensions = []string{"md"}

	source := NewSource(root, nil, cfg)
	docs, err := source.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Filename != "guide.md" {
		t.Errorf("expected guide.md, got %s", docs[0].Filename)
	}
}

func TestSourceDocuments_ExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "keep.txt", "kept")
	writeTestFile(t, root, "docs/skip.md", "skipped")
	writeTestFile(t, root, "sub/trace.log", "skipped")

	cfg := DefaultConfig()
	cfg.ExcludeGlobs = []string{"docs/", "*.log"}

	source := NewSource(root, nil, cfg)
	docs, err := source.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Filename != "keep.txt" {
		t.Errorf("expected keep.txt, got %s", docs[0].Filename)
	}
}

func TestSourceDocuments_MaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "small.txt", "tiny")
	writeTestFile(t, root, "big.txt", strings.Repeat("a", 64))

	cfg := DefaultConfig()
	cfg.MaxFileSize = 8

	source := NewSource(root, nil, cfg)
	docs, err := source.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Filename != "small.txt" {
		t.Errorf("expected small.txt, got %s", docs[0].Filename)
	}
}

func TestSourceDocuments_EmptyDir(t *testing.T) {
	source := NewSource(t.TempDir(), nil, nil)

	docs, err := source.Documents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestSourceDocuments_MissingRoot(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "absent"), nil, nil)

	_, err := source.Documents(context.Background())
	if err == nil {
		t.Error("expected error for missing root")
	}
}

func TestSourceDocuments_ContextCancelled(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "a.txt", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewSource(root, nil, nil)
	_, err := source.Documents(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxFileSize != 10<<20 {
		t.Errorf("expected 10MB max file size, got %d", cfg.MaxFileSize)
	}

	excluded := false
	for _, pattern := range cfg.ExcludeGlobs {
		if pattern == ".git/" {
			excluded = true
		}
	}
	if !excluded {
		t.Error("expected .git/ in default excludes")
	}
}

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"notes.txt", "text/plain"},
		{"sub/dir/README.md", "text/markdown"},
		{"page.HTM", "text/html"},
		{"server.log", "text/plain"},
		{"binary.exe", ""},
		{"no-extension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := mimeTypeFor(tt.path); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
