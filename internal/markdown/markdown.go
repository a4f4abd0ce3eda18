// Package markdown renders markdown to HTML for display. Comment output
// goes through a strict user-generated-content sanitizer; article output
// allows raw inline HTML, since article authors are trusted accounts.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// PreviewLen is the rendered length above which article previews are
// truncated at a paragraph boundary.
const PreviewLen = 500

// Renderer converts markdown to sanitized HTML.
type Renderer struct {
	comments  goldmark.Markdown
	articles  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New creates a Renderer with strikethrough, tables, autolinks and
// footnotes enabled.
func New() *Renderer {
	exts := goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Table,
		extension.Linkify,
		extension.Footnote,
	)
	return &Renderer{
		comments: goldmark.New(exts),
		articles: goldmark.New(exts, goldmark.WithRendererOptions(html.WithUnsafe())),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Comment renders untrusted comment markdown, stripping raw HTML.
func (r *Renderer) Comment(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.comments.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering comment markdown: %w", err)
	}
	return r.sanitizer.Sanitize(buf.String()), nil
}

// Article renders article markdown, keeping inline HTML intact.
func (r *Renderer) Article(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.articles.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering article markdown: %w", err)
	}
	return buf.String(), nil
}

// Preview shortens rendered article HTML for listing pages: content longer
// than PreviewLen is cut before its third paragraph and marked with an
// ellipsis.
func Preview(rendered string) string {
	if len(rendered) < PreviewLen {
		return rendered
	}
	idx := nthIndex(rendered, "<p>", 3)
	if idx < 0 {
		return rendered
	}
	return rendered[:idx] + "…"
}

// nthIndex returns the byte offset of the nth occurrence of sep, or -1.
func nthIndex(s, sep string, n int) int {
	offset := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(s[offset:], sep)
		if idx < 0 {
			return -1
		}
		offset += idx
		if i < n-1 {
			offset += len(sep)
		}
	}
	return offset
}
