package ports

import (
	"context"
	"time"

	"KijiScanner/internal/domain"
)

// PageFetcher downloads feeds and article pages as UTF-8 bytes.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError is implemented by fetch errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
}

// InsertResult is the outcome of storing one article.
type InsertResult int

const (
	Inserted InsertResult = iota
	Duplicate
	IntegrityFailure
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "integrity_failure"
	}
}

// ArticleStore persists articles with at-most-once semantics on the identity tuple.
type ArticleStore interface {
	Exists(ctx context.Context, article domain.Article) (bool, error)
	Insert(ctx context.Context, article domain.Article) (InsertResult, error)
}

// BatchSink receives the full batch of one ingestion run.
type BatchSink interface {
	Write(ctx context.Context, articles []domain.Article) (string, error)
}

// BatchSource hands staged batches to the upload stage.
type BatchSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]domain.Article, error)
	Archive(ctx context.Context, name string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
