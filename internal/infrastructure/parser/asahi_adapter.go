package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/scanner"
)

// AsahiAdapter reads Asahi Shimbun article pages.
type AsahiAdapter struct{}

var _ scanner.Adapter = AsahiAdapter{}

// NewAsahiAdapter returns the Asahi page adapter.
func NewAsahiAdapter() AsahiAdapter {
	return AsahiAdapter{}
}

// Origin identifies the adapter inside the registry.
func (AsahiAdapter) Origin() domain.Origin {
	return domain.OriginAsahi
}

// Title is the last <h1> on the page; the site banner comes first.
func (AsahiAdapter) Title(doc *goquery.Document) scanner.Field {
	h1 := doc.Find("h1").Last()
	if h1.Length() == 0 {
		return scanner.Absent()
	}
	return scanner.Found(headingText(h1))
}

func (AsahiAdapter) Date(doc *goquery.Document) scanner.Field {
	t := doc.Find("time").First()
	if t.Length() == 0 {
		return scanner.Absent()
	}
	return scanner.Found(strings.TrimSpace(t.Text()))
}

func (AsahiAdapter) Body(doc *goquery.Document) scanner.Field {
	div := doc.Find("div.nfyQp").First()
	if div.Length() == 0 {
		return scanner.Absent()
	}
	return scanner.Found(joinParagraphs(div))
}
