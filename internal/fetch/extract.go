package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractParagraphText parses HTML and concatenates every paragraph-level
// text block with single-space separators. It is the generic "largest text
// block" heuristic: no site-specific selectors.
func ExtractParagraphText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " "), nil
}
