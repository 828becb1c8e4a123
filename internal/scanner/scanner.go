package scanner

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/PuerkitoBio/goquery"

	"KijiScanner/internal/domain"
)

// Field is the outcome of looking up one article field in a page.
type Field struct {
	text  string
	found bool
}

// Found wraps text that was located in the page.
func Found(text string) Field {
	return Field{text: text, found: true}
}

// Absent marks a field whose element is missing from the page.
func Absent() Field {
	return Field{}
}

// Value returns the text and whether the element was present.
func (f Field) Value() (string, bool) {
	return f.text, f.found
}

// Adapter captures one origin's page layout (NHK, Asahi, etc.).
type Adapter interface {
	Origin() domain.Origin
	Title(doc *goquery.Document) Field
	Date(doc *goquery.Document) Field
	Body(doc *goquery.Document) Field
}

// Registry keeps a mapping from origins to their adapters.
type Registry struct {
	adapters map[domain.Origin]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[domain.Origin]Adapter{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[domain.Origin]Adapter{}
	}
	r.adapters[adapter.Origin()] = adapter
}

// Resolve returns the adapter for origin or an error if it is absent.
func (r *Registry) Resolve(origin domain.Origin) (Adapter, error) {
	if adapter, ok := r.adapters[origin]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("no adapter registered for origin %s", origin)
}

// Missing lists the origins that have no adapter, in ascending code order.
func (r *Registry) Missing(origins []domain.Origin) []domain.Origin {
	var missing []domain.Origin
	for _, o := range origins {
		if _, ok := r.adapters[o]; !ok {
			missing = append(missing, o)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// ParseDocument builds a goquery document from an already UTF-8 decoded page.
func ParseDocument(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
