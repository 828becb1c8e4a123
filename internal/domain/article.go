package domain

import (
	"fmt"
	"strings"
)

// TimestampLayout is the canonical pub_date format stored alongside articles.
const TimestampLayout = "2006-01-02 15:04:05"

// Article is a core entity describing a single news item scraped from an origin.
type Article struct {
	Title   string
	Body    string
	PubDate string
	Origin  Origin
	Genre   Genre
	Status  Status
}

// Identity is the field combination used to decide whether an article is already stored.
type Identity struct {
	Title   string
	Body    string
	PubDate string
	Origin  Origin
	Genre   Genre
}

// Identity returns the deduplication key of the article.
func (a Article) Identity() Identity {
	return Identity{
		Title:   a.Title,
		Body:    a.Body,
		PubDate: a.PubDate,
		Origin:  a.Origin,
		Genre:   a.Genre,
	}
}

// Status enumerates article lifecycle milestones after storage.
type Status string

const (
	StatusNew Status = "new"
)

// Source is one feed endpoint tagged with the genre and origin of its articles.
type Source struct {
	URL    string `yaml:"url"`
	Genre  Genre  `yaml:"genre"`
	Origin Origin `yaml:"origin"`
}

// Genre is the editorial category propagated from a source to its articles.
type Genre int

const (
	GenreSociety Genre = iota + 1
	GenreCultureEntertainment
	GenreScienceMedicine
	GenrePolitics
	GenreEconomics
	GenreInternational
	GenreSports
)

var genreNames = map[Genre]string{
	GenreSociety:              "society",
	GenreCultureEntertainment: "culture_entertainment",
	GenreScienceMedicine:      "science_medicine",
	GenrePolitics:             "politics",
	GenreEconomics:            "economics",
	GenreInternational:        "international",
	GenreSports:               "sports",
}

// Genres lists every known genre in code order.
func Genres() []Genre {
	return []Genre{
		GenreSociety,
		GenreCultureEntertainment,
		GenreScienceMedicine,
		GenrePolitics,
		GenreEconomics,
		GenreInternational,
		GenreSports,
	}
}

// Valid reports whether g is a known genre code.
func (g Genre) Valid() bool {
	_, ok := genreNames[g]
	return ok
}

func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return fmt.Sprintf("genre(%d)", int(g))
}

// MarshalText encodes the genre by name.
func (g Genre) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("unknown genre %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText accepts the genre name, case-insensitively.
func (g *Genre) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for code, n := range genreNames {
		if n == name {
			*g = code
			return nil
		}
	}
	return fmt.Errorf("unknown genre %q", string(text))
}

// Origin is the news outlet a source belongs to; it selects the article adapter.
type Origin int

const (
	OriginNHK Origin = iota + 1
	OriginAsahi
)

var originNames = map[Origin]string{
	OriginNHK:   "nhk",
	OriginAsahi: "asahi",
}

// Origins lists every known origin in code order.
func Origins() []Origin {
	return []Origin{OriginNHK, OriginAsahi}
}

// Valid reports whether o is a known origin code.
func (o Origin) Valid() bool {
	_, ok := originNames[o]
	return ok
}

func (o Origin) String() string {
	if name, ok := originNames[o]; ok {
		return name
	}
	return fmt.Sprintf("origin(%d)", int(o))
}

// MarshalText encodes the origin by name.
func (o Origin) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("unknown origin %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText accepts the origin name, case-insensitively.
func (o *Origin) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for code, n := range originNames {
		if n == name {
			*o = code
			return nil
		}
	}
	return fmt.Errorf("unknown origin %q", string(text))
}
