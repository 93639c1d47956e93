package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// reduces an HTML document to its readable text
func VisibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript, svg, iframe, nav, footer, header, form, aside").Remove()
	doc.Find("br, p, li, h1, h2, h3, h4, tr, div").Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	lines := strings.Split(doc.Find("body").Text(), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

// returns the page's og:image, if declared
func OpenGraphImage(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
