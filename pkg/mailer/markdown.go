package mailer

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Format selects how a rendered body becomes the HTML part of an email.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// MarkdownToHTML converts GitHub-flavored markdown to HTML. Raw HTML in the source is kept.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: markdown: %w", ErrRender, err)
	}
	return buf.String(), nil
}

// BodyHTML turns an interpolated body into HTML according to format.
// A failed markdown conversion returns the body unchanged together with the error.
func BodyHTML(body string, format Format) (string, error) {
	if format != FormatMarkdown {
		return body, nil
	}
	out, err := MarkdownToHTML(body)
	if err != nil {
		return body, err
	}
	return out, nil
}
