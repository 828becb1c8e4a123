package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/metrics"
	"KijiScanner/internal/ports"
)

// UploaderDeps wires staged batches to the article store.
type UploaderDeps struct {
	Batches ports.BatchSource
	Store   ports.ArticleStore
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Uploader moves staged batches into the store, inserting unseen articles only.
type Uploader struct {
	batches ports.BatchSource
	store   ports.ArticleStore
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// UploadReport counts outcomes across all processed articles.
type UploadReport struct {
	Files      int
	Total      int
	Inserted   int
	Duplicates int
	Failures   int
}

func (r *UploadReport) add(o UploadReport) {
	r.Files += o.Files
	r.Total += o.Total
	r.Inserted += o.Inserted
	r.Duplicates += o.Duplicates
	r.Failures += o.Failures
}

func NewUploader(deps UploaderDeps) (*Uploader, error) {
	if deps.Store == nil {
		return nil, errors.New("uploader: store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Uploader{
		batches: deps.Batches,
		store:   deps.Store,
		metrics: deps.Metrics,
		logger:  logger,
	}, nil
}

// Upload processes every staged batch and archives it afterwards. A batch
// that cannot be read stays in place for the next run.
func (u *Uploader) Upload(ctx context.Context) (UploadReport, error) {
	var report UploadReport
	if u.batches == nil {
		return report, errors.New("uploader: batch source is not configured")
	}

	names, err := u.batches.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list batches: %w", err)
	}
	u.logger.Info("processing article files", "count", len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		articles, err := u.batches.Read(ctx, name)
		if err != nil {
			u.logger.Warn("unable to read batch", "batch", name, "error", err)
			continue
		}

		fileReport := u.Process(ctx, articles)
		fileReport.Files = 1
		report.add(fileReport)

		if err := u.batches.Archive(ctx, name); err != nil {
			u.logger.Warn("unable to archive batch", "batch", name, "error", err)
			continue
		}
		u.logger.Info("finished processing batch", "batch", name)
	}

	return report, nil
}

// Process filters out stored articles, then inserts the rest one by one.
// Each insert stands alone; a failure never stops the remaining articles.
func (u *Uploader) Process(ctx context.Context, articles []domain.Article) UploadReport {
	var report UploadReport

	fresh := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		exists, err := u.store.Exists(ctx, a)
		if err != nil {
			report.Total++
			report.Failures++
			u.metrics.StoreResult(ports.IntegrityFailure.String())
			u.logger.Warn("unable to check article", "title", a.Title, "error", err)
			continue
		}
		if exists {
			report.Duplicates++
			u.metrics.StoreResult(ports.Duplicate.String())
			continue
		}
		fresh = append(fresh, a)
	}
	u.logger.Info("inserting articles", "count", len(fresh), "filtered", report.Duplicates)

	for _, a := range fresh {
		report.Total++
		res, err := u.store.Insert(ctx, a)
		u.metrics.StoreResult(res.String())

		switch {
		case err == nil && res == ports.Inserted:
			report.Inserted++
		case res == ports.Duplicate:
			report.Duplicates++
		default:
			report.Failures++
			u.logger.Info("failed to insert article", "title", a.Title, "pub_date", a.PubDate, "error", err)
		}
	}

	u.logger.Info("finished processing articles",
		"total", report.Total,
		"success", report.Inserted,
		"failure", report.Failures,
	)
	return report
}
