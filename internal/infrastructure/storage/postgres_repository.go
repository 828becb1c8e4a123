package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/ports"
)

// Postgres error codes treated as integrity failures.
const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
)

// ErrIntegrity wraps constraint violations raised by the articles table.
var ErrIntegrity = errors.New("article violates storage constraints")

const createArticlesTable = `CREATE TABLE IF NOT EXISTS articles (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    body TEXT NOT NULL,
    pub_date TEXT,
    source INTEGER,
    genre INTEGER,
    status TEXT NOT NULL DEFAULT 'new'
)`

// PostgresRepository persists articles into Postgres with at-most-once semantics
// on the identity tuple. Writes are serialized through a single writer lock.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	writeMu sync.Mutex
}

var _ ports.ArticleStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Ensure creates the articles table when it does not exist yet.
func (r *PostgresRepository) Ensure(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createArticlesTable); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

// Exists reports whether an article with the exact identity tuple is stored.
func (r *PostgresRepository) Exists(ctx context.Context, article domain.Article) (bool, error) {
	query, args, err := r.builder.
		Select("1").
		From("articles").
		Where(sq.Eq{"title": article.Title}).
		Where(sq.Eq{"body": article.Body}).
		Where(sq.Eq{"pub_date": article.PubDate}).
		Where(sq.Eq{"source": int(article.Origin)}).
		Where(sq.Eq{"genre": int(article.Genre)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query article: %w", err)
	}
	return true, nil
}

// Insert writes one article in its own autocommitted statement. Constraint
// violations come back as ports.IntegrityFailure with an error wrapping ErrIntegrity.
func (r *PostgresRepository) Insert(ctx context.Context, article domain.Article) (ports.InsertResult, error) {
	status := article.Status
	if status == "" {
		status = domain.StatusNew
	}

	query, args, err := r.builder.
		Insert("articles").
		Columns("title", "body", "pub_date", "source", "genre", "status").
		Values(nullIfEmpty(article.Title), nullIfEmpty(article.Body), article.PubDate, int(article.Origin), int(article.Genre), string(status)).
		ToSql()
	if err != nil {
		return ports.IntegrityFailure, fmt.Errorf("build insert: %w", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == codeUniqueViolation || pqErr.Code == codeNotNullViolation) {
			return ports.IntegrityFailure, fmt.Errorf("%w: %s", ErrIntegrity, pqErr.Message)
		}
		return ports.IntegrityFailure, fmt.Errorf("insert article: %w", err)
	}
	return ports.Inserted, nil
}

// Count returns the number of stored articles.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").From("articles").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// Empty strings become NULL so NOT NULL columns reject them.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
