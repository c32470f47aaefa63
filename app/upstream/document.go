package upstream

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup reduces a NewsML-ish document body to plain text. Tags are
// dropped, text nodes kept, whitespace collapsed. Input that fails to parse is
// returned trimmed rather than lost.
func StripMarkup(raw string) string {
	// Pad tag boundaries so text from adjacent elements does not run together.
	padded := strings.ReplaceAll(raw, "<", " <")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(padded))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	text := doc.Text()
	return strings.Join(strings.Fields(text), " ")
}
