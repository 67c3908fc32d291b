package extract

import (
	"bytes"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

const (
	// PolicyPreviewLimit caps a policy preview in runes before the ellipsis.
	PolicyPreviewLimit = 300

	minReadableText = 50
)

// PolicyPreview returns the leading text of a policy page. The main article
// text is preferred; pages that readability cannot make sense of fall back
// to the visible body text.
func PolicyPreview(body []byte, pageURL string) (string, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", false
	}
	text := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(bytes.NewReader(body), parsed); err == nil {
			text = CleanText(article.TextContent)
		}
	}
	if len([]rune(text)) < minReadableText {
		if fallback := VisibleText(body); len(fallback) > len(text) {
			text = fallback
		}
	}
	if text == "" {
		return "", false
	}
	return Truncate(text, PolicyPreviewLimit), true
}
