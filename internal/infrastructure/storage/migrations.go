package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"KijiScanner/internal/domain"
)

var lookupTables = []string{
	`CREATE TABLE IF NOT EXISTS genre (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT
)`,
	`CREATE TABLE IF NOT EXISTS source (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT
)`,
}

var originDescriptions = map[domain.Origin]string{
	domain.OriginNHK:   "NHK News Web",
	domain.OriginAsahi: "Asahi Shimbun Digital",
}

// Migrate creates and fills the genre and source lookup tables. It is safe to
// run repeatedly.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if err := r.Ensure(ctx); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	for _, stmt := range lookupTables {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create lookup table: %w", err)
		}
	}

	genres := r.builder.Insert("genre").Columns("id", "name", "description")
	for _, g := range domain.Genres() {
		genres = genres.Values(int(g), g.String(), describe(g.String()))
	}
	if err := r.execUpsert(ctx, genres); err != nil {
		return fmt.Errorf("seed genre: %w", err)
	}

	origins := r.builder.Insert("source").Columns("id", "name", "description")
	for _, o := range domain.Origins() {
		origins = origins.Values(int(o), o.String(), originDescriptions[o])
	}
	if err := r.execUpsert(ctx, origins); err != nil {
		return fmt.Errorf("seed source: %w", err)
	}

	return nil
}

func (r *PostgresRepository) execUpsert(ctx context.Context, insert sq.InsertBuilder) error {
	query, args, err := insert.
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description").
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// describe turns "culture_entertainment" into "Culture & Entertainment".
func describe(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " & ")
}
