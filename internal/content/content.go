// Package content handles the opaque rich-text blob stories are written in.
// Story bodies are HTML strings produced by the editor; this package derives
// plain text, read times, excerpts, and renders Markdown submissions to HTML.
package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

// wordsPerMinute is the assumed reading speed for read-time estimates.
const wordsPerMinute = 200

// htmlTagPattern matches common HTML tags to detect if a string contains markup.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|img|figure)[\s>/]`)

// ContainsHTML checks if a string appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// PlainText extracts the visible text of an HTML blob.
// Input without markup is returned trimmed but otherwise unchanged.
// Malformed HTML never fails: the tokenizer consumes what it can.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if !ContainsHTML(s) {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Block boundaries become whitespace so adjacent words don't fuse.
			b.WriteByte(' ')
		}
	}
}

// WordCount counts whitespace-separated words in the stripped text.
func WordCount(s string) int {
	return len(strings.Fields(PlainText(s)))
}

// ReadTimeMinutes estimates reading time for a rich-text blob.
// Returns ceil(words/200) with a floor of 1 minute.
func ReadTimeMinutes(s string) int {
	words := WordCount(s)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FormatReadTime renders a read-time estimate for display.
// Never implies zero or negative minutes.
func FormatReadTime(minutes int) string {
	if minutes < 1 {
		return "< 1 min read"
	}
	return fmt.Sprintf("%d min read", minutes)
}

// FormatCount renders large counters compactly: 1234 → "1.2K", 2500000 → "2.5M".
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000_000), ".0") + "M"
	case n >= 1_000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000), ".0") + "K"
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Excerpt derives a plain-text preview of at most maxLen characters.
// HTML is converted through Markdown first so emphasis and links degrade
// gracefully instead of leaving tag debris.
func Excerpt(s string, maxLen int) string {
	if s == "" {
		return ""
	}

	text := s
	if ContainsHTML(s) {
		if md, err := htmltomarkdown.ConvertString(s); err == nil {
			text = md
		}
	}
	text = PlainText(text)

	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}

// markdown is the shared renderer for Markdown story submissions.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown converts a Markdown source to the HTML blob the rest of
// the system treats as opaque story content.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
