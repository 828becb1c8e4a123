package sources

import (
	"fmt"

	"KijiScanner/internal/domain"
)

// Registry is a fixed, ordered catalog of feed endpoints.
type Registry struct {
	sources []domain.Source
}

// New validates the entries and freezes them into a registry.
func New(list []domain.Source) (*Registry, error) {
	frozen := make([]domain.Source, 0, len(list))
	for i, src := range list {
		if src.URL == "" {
			return nil, fmt.Errorf("source %d: empty url", i)
		}
		if !src.Origin.Valid() {
			return nil, fmt.Errorf("source %s: unknown origin %d", src.URL, int(src.Origin))
		}
		if !src.Genre.Valid() {
			return nil, fmt.Errorf("source %s: unknown genre %d", src.URL, int(src.Genre))
		}
		frozen = append(frozen, src)
	}
	return &Registry{sources: frozen}, nil
}

// All returns a copy of the sources in registry order.
func (r *Registry) All() []domain.Source {
	out := make([]domain.Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len reports the number of sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Default returns the built-in NHK and Asahi feeds.
func Default() []domain.Source {
	return []domain.Source{
		{URL: "http://www3.nhk.or.jp/rss/news/cat1.xml", Genre: domain.GenreSociety, Origin: domain.OriginNHK},
		{URL: "http://www3.nhk.or.jp/rss/news/cat2.xml", Genre: domain.GenreCultureEntertainment, Origin: domain.OriginNHK},
		{URL: "http://www3.nhk.or.jp/rss/news/cat3.xml", Genre: domain.GenreScienceMedicine, Origin: domain.OriginNHK},
		{URL: "http://www3.nhk.or.jp/rss/news/cat4.xml", Genre: domain.GenrePolitics, Origin: domain.OriginNHK},
		{URL: "http://www3.nhk.or.jp/rss/news/cat5.xml", Genre: domain.GenreEconomics, Origin: domain.OriginNHK},
		{URL: "http://www3.nhk.or.jp/rss/news/cat6.xml", Genre: domain.GenreInternational, Origin: domain.OriginNHK},
		{URL: "http://www3.nhk.or.jp/rss/news/cat7.xml", Genre: domain.GenreSports, Origin: domain.OriginNHK},

		{URL: "http://www3.asahi.com/rss/national.rdf", Genre: domain.GenreSociety, Origin: domain.OriginAsahi},
		{URL: "http://www3.asahi.com/rss/politics.rdf", Genre: domain.GenrePolitics, Origin: domain.OriginAsahi},
		{URL: "http://www3.asahi.com/rss/sports.rdf", Genre: domain.GenreSports, Origin: domain.OriginAsahi},
		{URL: "http://www3.asahi.com/rss/business.rdf", Genre: domain.GenreEconomics, Origin: domain.OriginAsahi},
		{URL: "http://www3.asahi.com/rss/international.rdf", Genre: domain.GenreInternational, Origin: domain.OriginAsahi},
		{URL: "http://www3.asahi.com/rss/culture.rdf", Genre: domain.GenreCultureEntertainment, Origin: domain.OriginAsahi},
	}
}
