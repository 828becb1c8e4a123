package scanner

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KijiScanner/internal/domain"
)

type stubAdapter struct {
	origin domain.Origin
	title  func(*goquery.Document) Field
	date   func(*goquery.Document) Field
	body   func(*goquery.Document) Field
}

func (s stubAdapter) Origin() domain.Origin             { return s.origin }
func (s stubAdapter) Title(doc *goquery.Document) Field { return s.title(doc) }
func (s stubAdapter) Date(doc *goquery.Document) Field  { return s.date(doc) }
func (s stubAdapter) Body(doc *goquery.Document) Field  { return s.body(doc) }

type fixedDates struct{}

func (fixedDates) NormalizeDate(text string) (string, bool) {
	if text == "good" {
		return "2021-05-03 09:15:00", true
	}
	return "2030-01-01 00:00:00", false
}

func (fixedDates) Fallback() string { return "2030-01-01 00:00:00" }

func found(s string) func(*goquery.Document) Field {
	return func(*goquery.Document) Field { return Found(s) }
}

func absent(*goquery.Document) Field { return Absent() }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubAdapter{origin: domain.OriginNHK})

	a, err := reg.Resolve(domain.OriginNHK)
	require.NoError(t, err)
	assert.Equal(t, domain.OriginNHK, a.Origin())

	_, err = reg.Resolve(domain.OriginAsahi)
	assert.Error(t, err)

	assert.Equal(t, []domain.Origin{domain.OriginAsahi}, reg.Missing(domain.Origins()))
}

func TestExtractFieldsIndependently(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte("<html><body></body></html>"))
	require.NoError(t, err)

	ex := NewExtractor(fixedDates{}, slog.New(slog.DiscardHandler))

	got := ex.Extract(doc, stubAdapter{
		origin: domain.OriginNHK,
		title:  found("title"),
		date:   absent,
		body:   found("body"),
	}, "http://example.org/a")

	assert.Equal(t, "title", got.Title)
	assert.Equal(t, "body", got.Body)
	assert.Equal(t, "2030-01-01 00:00:00", got.PubDate)
	assert.True(t, got.DateFallback)

	got = ex.Extract(doc, stubAdapter{
		origin: domain.OriginNHK,
		title:  absent,
		date:   found("good"),
		body:   absent,
	}, "http://example.org/b")

	assert.Empty(t, got.Title)
	assert.Empty(t, got.Body)
	assert.Equal(t, "2021-05-03 09:15:00", got.PubDate)
	assert.False(t, got.DateFallback)
}

func TestExtractRecoversFromPanickingField(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<p>x</p>"))
	require.NoError(t, err)

	ex := NewExtractor(fixedDates{}, nil)
	got := ex.Extract(doc, stubAdapter{
		origin: domain.OriginAsahi,
		title:  func(*goquery.Document) Field { panic("boom") },
		date:   found("good"),
		body:   found("still here"),
	}, "http://example.org/c")

	assert.Empty(t, got.Title)
	assert.Equal(t, "still here", got.Body)
	assert.Equal(t, "2021-05-03 09:15:00", got.PubDate)
}
