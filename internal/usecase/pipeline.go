package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/metrics"
	"KijiScanner/internal/ports"
	"KijiScanner/internal/scanner"
)

const defaultWorkers = 4

// LinkExtractor turns a raw feed document into candidate article URLs.
type LinkExtractor func(feed []byte, origin domain.Origin) []string

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Sources   []domain.Source
	Fetcher   ports.PageFetcher
	Links     LinkExtractor
	Adapters  *scanner.Registry
	Extractor *scanner.Extractor
	Sink      ports.BatchSink
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
	// Workers bounds concurrent article fetches within one source.
	Workers int
}

// Pipeline implements the feed -> page -> article ingestion workflow.
type Pipeline struct {
	sources   []domain.Source
	adapters  map[domain.Origin]scanner.Adapter
	fetcher   ports.PageFetcher
	links     LinkExtractor
	extractor *scanner.Extractor
	sink      ports.BatchSink
	metrics   *metrics.Recorder
	logger    *slog.Logger
	workers   int
}

// DownloadReport summarizes one Download run.
type DownloadReport struct {
	Batch    string
	Articles int
}

// NewPipeline resolves one adapter per source up front so a missing origin
// fails at startup rather than mid-run.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("pipeline: fetcher is required")
	}
	if deps.Links == nil {
		return nil, errors.New("pipeline: link extractor is required")
	}
	if deps.Adapters == nil || deps.Extractor == nil {
		return nil, errors.New("pipeline: adapters and extractor are required")
	}

	adapters := make(map[domain.Origin]scanner.Adapter, len(deps.Sources))
	for _, src := range deps.Sources {
		if _, ok := adapters[src.Origin]; ok {
			continue
		}
		adapter, err := deps.Adapters.Resolve(src.Origin)
		if err != nil {
			return nil, fmt.Errorf("pipeline: source %s: %w", src.URL, err)
		}
		adapters[src.Origin] = adapter
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Pipeline{
		sources:   append([]domain.Source(nil), deps.Sources...),
		adapters:  adapters,
		fetcher:   deps.Fetcher,
		links:     deps.Links,
		extractor: deps.Extractor,
		sink:      deps.Sink,
		metrics:   deps.Metrics,
		logger:    logger,
		workers:   workers,
	}, nil
}

// Download collects every source and writes the batch to the sink once.
// A cancelled run writes nothing.
func (p *Pipeline) Download(ctx context.Context) (DownloadReport, error) {
	articles, err := p.Collect(ctx)
	if err != nil {
		return DownloadReport{}, err
	}

	report := DownloadReport{Articles: len(articles)}
	if p.sink == nil {
		return report, nil
	}

	name, err := p.sink.Write(ctx, articles)
	if err != nil {
		return report, fmt.Errorf("write batch: %w", err)
	}
	report.Batch = name

	p.metrics.RunCompleted(float64(time.Now().Unix()))
	p.logger.Info("finished downloading", "articles", len(articles), "batch", name)
	return report, nil
}

// Collect walks the sources in order and returns the assembled articles.
// Failed feeds and pages are logged and skipped.
func (p *Pipeline) Collect(ctx context.Context) ([]domain.Article, error) {
	var batch []domain.Article
	for _, src := range p.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch = append(batch, p.collectSource(ctx, src)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}

func (p *Pipeline) collectSource(ctx context.Context, src domain.Source) []domain.Article {
	p.logger.Info("downloading source", "genre", src.Genre, "origin", src.Origin, "url", src.URL)

	feed, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		p.logger.Warn("unable to download feed", fetchFailure(src.URL, err)...)
		p.metrics.FeedFetched(src.Origin, false)
		return nil
	}
	p.metrics.FeedFetched(src.Origin, true)

	urls := p.links(feed, src.Origin)
	p.logger.Info("found article links", "genre", src.Genre, "origin", src.Origin, "count", len(urls))

	adapter := p.adapters[src.Origin]
	results := make([]*domain.Article, len(urls))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, pageURL := range urls {
		g.Go(func() error {
			if article, ok := p.collectArticle(ctx, src, adapter, pageURL); ok {
				results[i] = &article
			}
			return nil
		})
	}
	_ = g.Wait()

	articles := make([]domain.Article, 0, len(urls))
	for _, a := range results {
		if a != nil {
			articles = append(articles, *a)
		}
	}

	p.logger.Info("downloaded source", "genre", src.Genre, "origin", src.Origin, "articles", len(articles), "skipped", len(urls)-len(articles))
	return articles
}

func (p *Pipeline) collectArticle(ctx context.Context, src domain.Source, adapter scanner.Adapter, pageURL string) (article domain.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("unexpected failure processing article", "url", pageURL, "error", fmt.Sprint(r))
			article, ok = domain.Article{}, false
		}
	}()

	page, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		p.logger.Warn("unable to download article", fetchFailure(pageURL, err)...)
		p.metrics.ArticleFetchFailed(src.Origin)
		return domain.Article{}, false
	}
	if ctx.Err() != nil {
		return domain.Article{}, false
	}

	doc, err := scanner.ParseDocument(page)
	if err != nil {
		p.logger.Warn("unable to parse article", "url", pageURL, "error", err)
		return domain.Article{}, false
	}

	fields := p.extractor.Extract(doc, adapter, pageURL)
	p.metrics.ArticleExtracted(src.Origin, src.Genre, fields.DateFallback)
	p.logger.Debug("article extracted", "url", pageURL, "title", fields.Title)

	return domain.Article{
		Title:   fields.Title,
		Body:    fields.Body,
		PubDate: fields.PubDate,
		Origin:  src.Origin,
		Genre:   src.Genre,
		Status:  domain.StatusNew,
	}, true
}

// fetchFailure builds log attributes for a failed fetch, adding the HTTP status
// when the fetcher reported one.
func fetchFailure(url string, err error) []any {
	attrs := []any{"url", url, "error", err}
	var statusErr ports.StatusError
	if errors.As(err, &statusErr) {
		attrs = append(attrs, "status", statusErr.HTTPStatus())
	}
	return attrs
}
