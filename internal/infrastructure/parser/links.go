package parser

import (
	"regexp"
	"strings"

	"KijiScanner/internal/domain"
)

var linkExpr = regexp.MustCompile(`(?s)<link>\s*(.*?)\s*</link>`)

// Channel links that point at the outlet's landing page rather than an article.
var denylist = map[domain.Origin][]string{
	domain.OriginNHK:   {"http://www3.nhk.or.jp/news/"},
	domain.OriginAsahi: {"https://www.asahi.com/"},
}

// ExtractLinks scans every <link>...</link> span in an RSS or RDF document and
// returns the article URLs in document order. Duplicates are kept.
func ExtractLinks(feed []byte, origin domain.Origin) []string {
	deny := make(map[string]struct{}, len(denylist[origin]))
	for _, u := range denylist[origin] {
		deny[u] = struct{}{}
	}

	matches := linkExpr.FindAllSubmatch(feed, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		link := unwrapCDATA(string(m[1]))
		if link == "" {
			continue
		}
		if _, skip := deny[link]; skip {
			continue
		}
		links = append(links, link)
	}
	return links
}

func unwrapCDATA(s string) string {
	if strings.HasPrefix(s, "<![CDATA[") && strings.HasSuffix(s, "]]>") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<![CDATA["), "]]>")
	}
	return strings.TrimSpace(s)
}
