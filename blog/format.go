package blog

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cjy-OIer/blog/utils"
)

// Formatter turns a raw post body into safe HTML.
type Formatter interface {
	Format(content string) string
}

// NewFormatter returns the formatter for the configured content format.
// Anything other than "markdown" falls back to plain paragraphs.
func NewFormatter(format string) Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "markdown") {
		return NewMarkdownFormatter()
	}
	return PlainFormatter{}
}

// PlainFormatter wraps every non-blank line in a paragraph.
type PlainFormatter struct{}

func (PlainFormatter) Format(content string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return b.String()
}

// MarkdownFormatter renders GitHub-flavoured markdown and strips anything unsafe.
type MarkdownFormatter struct {
	md goldmark.Markdown
}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (f *MarkdownFormatter) Format(content string) string {
	var buf bytes.Buffer
	if err := f.md.Convert([]byte(content), &buf); err != nil {
		return PlainFormatter{}.Format(content)
	}
	return utils.Sanitize(buf.String())
}
