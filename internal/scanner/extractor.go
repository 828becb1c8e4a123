package scanner

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// DateNormalizer turns page date text into the canonical timestamp string.
type DateNormalizer interface {
	// NormalizeDate returns the canonical form and false when the fallback was used.
	NormalizeDate(text string) (string, bool)
	// Fallback returns the ingestion-time substitute.
	Fallback() string
}

// Extracted holds the three article fields read from one page.
type Extracted struct {
	Title        string
	Body         string
	PubDate      string
	DateFallback bool
}

// Extractor reads title, date and body independently so one broken field never
// costs the other two.
type Extractor struct {
	dates  DateNormalizer
	logger *slog.Logger
}

// NewExtractor wires the date normalizer and logger.
func NewExtractor(dates DateNormalizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{dates: dates, logger: logger}
}

// Extract applies adapter to doc. It never panics.
func (e *Extractor) Extract(doc *goquery.Document, adapter Adapter, pageURL string) Extracted {
	var out Extracted

	title, ok := e.read("title", pageURL, func() Field { return adapter.Title(doc) }).Value()
	if !ok {
		e.logger.Warn("unable to parse title", "url", pageURL, "origin", adapter.Origin())
	}
	out.Title = title

	dateText, ok := e.read("date", pageURL, func() Field { return adapter.Date(doc) }).Value()
	if ok {
		out.PubDate, ok = e.dates.NormalizeDate(dateText)
		out.DateFallback = !ok
	} else {
		e.logger.Warn("unable to parse date", "url", pageURL, "origin", adapter.Origin())
		out.PubDate = e.dates.Fallback()
		out.DateFallback = true
	}

	body, ok := e.read("body", pageURL, func() Field { return adapter.Body(doc) }).Value()
	if !ok {
		e.logger.Warn("unable to parse body", "url", pageURL, "origin", adapter.Origin())
	}
	out.Body = body

	return out
}

func (e *Extractor) read(field, pageURL string, fn func() Field) (f Field) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("field extraction failed", "field", field, "url", pageURL, "error", fmt.Sprint(r))
			f = Absent()
		}
	}()
	return fn()
}
