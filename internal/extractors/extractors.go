package extractors

import "strings"

// PlainTextExtractor handles plain text content. It is also the fallback
// for any type nothing more specific claims.
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) Extract(content []byte) (string, error) {
	text := strings.ToValidUTF8(string(content), "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text), nil
}

func (e *PlainTextExtractor) SupportedTypes() []string {
	return []string{"text/plain", "*/*"} // Fallback for any type
}

func (e *PlainTextExtractor) Priority() int {
	return 1 // Lowest priority - fallback
}

// MarkdownExtractor handles Markdown content. Markup is left in place -
// headings and lists carry meaning the embedding model can use - only
// line endings and blank-line runs are cleaned up.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(content []byte) (string, error) {
	text := strings.ToValidUTF8(string(content), "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// Remove excessive blank lines (more than 2 consecutive)
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text), nil
}

func (e *MarkdownExtractor) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (e *MarkdownExtractor) Priority() int {
	return 50 // Format-specific
}

// HTMLExtractor strips markup from HTML content, keeping the visible text.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(content []byte) (string, error) {
	text := strings.ToValidUTF8(string(content), "")

	text = removeBlocks(text, "script")
	text = removeBlocks(text, "style")
	text = stripTags(text)
	text = decodeEntities(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	// Collapse runs of spaces left behind by removed tags
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text), nil
}

func (e *HTMLExtractor) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (e *HTMLExtractor) Priority() int {
	return 50 // Format-specific
}

// removeBlocks drops everything between an opening and closing tag,
// including the tags. Used for script and style blocks whose contents are
// never document text.
func removeBlocks(content, tagName string) string {
	result := content

	for {
		startTag := "<" + strings.ToLower(tagName)
		endTag := "</" + strings.ToLower(tagName) + ">"

		startIdx := strings.Index(strings.ToLower(result), startTag)
		if startIdx == -1 {
			break
		}

		endIdx := strings.Index(strings.ToLower(result[startIdx:]), endTag)
		if endIdx == -1 {
			break
		}

		result = result[:startIdx] + result[startIdx+endIdx+len(endTag):]
	}

	return result
}

// stripTags removes HTML tags, replacing each with a space so adjacent
// words don't fuse.
func stripTags(content string) string {
	var result strings.Builder
	inTag := false

	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune(' ')
		case !inTag:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// decodeEntities resolves the entities that commonly show up in prose.
func decodeEntities(content string) string {
	replacements := []struct {
		entity      string
		replacement string
	}{
		{"&nbsp;", " "},
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", "\""},
		{"&apos;", "'"},
		{"&#39;", "'"},
		{"&mdash;", "—"},
		{"&ndash;", "–"},
		{"&hellip;", "..."},
		{"&copy;", "©"},
		{"&reg;", "®"},
		{"&trade;", "™"},
	}

	for _, r := range replacements {
		content = strings.ReplaceAll(content, r.entity, r.replacement)
	}

	return content
}
