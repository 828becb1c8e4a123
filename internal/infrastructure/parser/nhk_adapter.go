package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/scanner"
)

// NHKAdapter reads NHK News article pages.
type NHKAdapter struct{}

var _ scanner.Adapter = NHKAdapter{}

// NewNHKAdapter returns the NHK page adapter.
func NewNHKAdapter() NHKAdapter {
	return NHKAdapter{}
}

// Origin identifies the adapter inside the registry.
func (NHKAdapter) Origin() domain.Origin {
	return domain.OriginNHK
}

// Title is the last <h1 class="content--title">, minus nested spans.
func (NHKAdapter) Title(doc *goquery.Document) scanner.Field {
	h1 := doc.Find("h1.content--title").Last()
	if h1.Length() == 0 {
		return scanner.Absent()
	}
	return scanner.Found(headingText(h1))
}

// Date is the <time> inside <p class="content--date">.
func (NHKAdapter) Date(doc *goquery.Document) scanner.Field {
	t := doc.Find("p.content--date time").First()
	if t.Length() == 0 {
		return scanner.Absent()
	}
	return scanner.Found(strings.TrimSpace(t.Text()))
}

// Body prefers the summary paragraph and otherwise joins the main content paragraphs.
func (NHKAdapter) Body(doc *goquery.Document) scanner.Field {
	if summary := doc.Find("p.content--summary").First(); summary.Length() > 0 {
		return scanner.Found(strings.TrimSpace(summary.Text()))
	}

	div := doc.Find("div.maincontent_body.text").First()
	if div.Length() == 0 {
		return scanner.Absent()
	}
	return scanner.Found(joinParagraphs(div))
}

// headingText drops annotation spans from a copy of h and returns the rest.
func headingText(h *goquery.Selection) string {
	clone := h.Clone()
	clone.Find("span").Remove()
	return strings.TrimSpace(clone.Text())
}

func joinParagraphs(container *goquery.Selection) string {
	var b strings.Builder
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		b.WriteString(strings.TrimSpace(p.Text()))
	})
	return b.String()
}
