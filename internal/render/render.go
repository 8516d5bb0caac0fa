// Package render turns post bodies into safe HTML and plain text.
package render

import (
	"bytes"
	stdhtml "html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// Raw HTML is kept here and cleaned by the sanitizer below.
			html.WithUnsafe(),
		),
	)

	sanitizer   = newSanitizer()
	stripPolicy = bluemonday.StripTagsPolicy()
)

func newSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	policy.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	return policy
}

// Markdown converts Markdown to sanitized HTML.
func Markdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// MustMarkdown is Markdown for templates. Conversion errors fall back to
// the escaped source text.
func MustMarkdown(content string) template.HTML {
	out, err := Markdown(content)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return out
}

// StripHTML removes every tag, decodes entities and collapses whitespace.
// The result is plain text and must be escaped again before it is put
// back into HTML.
func StripHTML(content string) string {
	text := stdhtml.UnescapeString(stripPolicy.Sanitize(content))
	return strings.Join(strings.Fields(text), " ")
}

// PlainText renders Markdown and strips the result to text, for excerpts.
func PlainText(content string) string {
	out, err := Markdown(content)
	if err != nil {
		return StripHTML(content)
	}
	return StripHTML(string(out))
}
