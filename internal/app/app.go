package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"KijiScanner/internal/config"
	"KijiScanner/internal/domain"
	"KijiScanner/internal/infrastructure/batchfile"
	"KijiScanner/internal/infrastructure/httpclient"
	"KijiScanner/internal/infrastructure/parser"
	"KijiScanner/internal/infrastructure/scheduler"
	"KijiScanner/internal/infrastructure/storage"
	"KijiScanner/internal/logging"
	"KijiScanner/internal/metrics"
	"KijiScanner/internal/ports"
	"KijiScanner/internal/scanner"
	"KijiScanner/internal/sources"
	"KijiScanner/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Recorder
	batches  *batchfile.Store
	pipeline *usecase.Pipeline

	dbMu   sync.Mutex
	db     *sql.DB
	ownsDB bool
	repo   *storage.PostgresRepository
}

// Option customizes an Application, mostly for tests.
type Option func(*options)

type options struct {
	db      *sql.DB
	fetcher ports.PageFetcher
}

// WithDB uses an existing connection pool instead of opening the configured DSN.
func WithDB(db *sql.DB) Option {
	return func(o *options) { o.db = db }
}

// WithFetcher replaces the HTTP client used for feeds and pages.
func WithFetcher(f ports.PageFetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// New builds the download side eagerly; the database is opened on first use.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	registry, err := sources.New(cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}

	batches, err := batchfile.NewStore(cfg.Staging.IncomingDir, cfg.Staging.ProcessedDir)
	if err != nil {
		return nil, err
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = httpclient.New(httpclient.Options{
			Timeout:      cfg.HTTP.Timeout,
			HostInterval: cfg.HTTP.HostInterval,
			HostBurst:    cfg.HTTP.HostBurst,
			Headers:      cfg.HTTP.Headers,
		})
	}

	adapters := scanner.NewRegistry()
	parser.RegisterDefaults(adapters)
	if missing := adapters.Missing(domain.Origins()); len(missing) > 0 {
		return nil, fmt.Errorf("no adapter for origins %v", missing)
	}

	dates := parser.NewDateNormalizer(baseLogger.With("component", "dates"), nil)
	recorder := metrics.New()

	pipeline, err := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:   registry.All(),
		Fetcher:   fetcher,
		Links:     parser.ExtractLinks,
		Adapters:  adapters,
		Extractor: scanner.NewExtractor(dates, baseLogger.With("component", "extractor")),
		Sink:      batches,
		Metrics:   recorder,
		Logger:    baseLogger.With("component", "pipeline"),
		Workers:   cfg.HTTP.Workers,
	})
	if err != nil {
		return nil, err
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		metrics:  recorder,
		batches:  batches,
		pipeline: pipeline,
		db:       o.db,
	}, nil
}

// Download runs one feed crawl and stages the result as a batch file.
func (a *Application) Download(ctx context.Context) (usecase.DownloadReport, error) {
	report, err := a.pipeline.Download(ctx)
	a.dumpMetrics()
	return report, err
}

// Upload pushes every staged batch into the database.
func (a *Application) Upload(ctx context.Context) (usecase.UploadReport, error) {
	repo, err := a.store(ctx)
	if err != nil {
		return usecase.UploadReport{}, err
	}

	uploader, err := usecase.NewUploader(usecase.UploaderDeps{
		Batches: a.batches,
		Store:   repo,
		Metrics: a.metrics,
		Logger:  a.logger.With("component", "uploader"),
	})
	if err != nil {
		return usecase.UploadReport{}, err
	}

	report, err := uploader.Upload(ctx)
	a.dumpMetrics()
	if err != nil {
		return report, err
	}

	if stored, err := repo.Count(ctx); err != nil {
		a.logger.Warn("unable to count stored articles", "error", err)
	} else {
		a.logger.Info("articles stored", "rows", stored)
	}
	return report, nil
}

// RunOnce downloads then uploads. Batches left over from earlier runs are
// uploaded too.
func (a *Application) RunOnce(ctx context.Context) error {
	if _, err := a.Download(ctx); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if _, err := a.Upload(ctx); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

// Migrate creates the articles table and the genre/source lookup tables.
func (a *Application) Migrate(ctx context.Context) error {
	repo, err := a.store(ctx)
	if err != nil {
		return err
	}
	return repo.Migrate(ctx)
}

// Watch runs RunOnce immediately and then on every scheduler interval until
// ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, a.RunOnce, a.logger.With("component", "scheduler"))

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching feeds", "interval", a.cfg.Scheduler.Interval.String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// Close releases the database pool when the application opened it.
func (a *Application) Close() error {
	a.dbMu.Lock()
	defer a.dbMu.Unlock()

	if a.ownsDB && a.db != nil {
		return a.db.Close()
	}
	return nil
}

// store opens the pool and ensures the schema. Only success is kept, so a
// failed attempt is retried on the next call.
func (a *Application) store(ctx context.Context) (*storage.PostgresRepository, error) {
	a.dbMu.Lock()
	defer a.dbMu.Unlock()

	if a.repo != nil {
		return a.repo, nil
	}

	if a.db == nil {
		if a.cfg.Database.DSN == "" {
			return nil, errors.New("database dsn is not configured")
		}
		db, err := sql.Open("postgres", a.cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// single writer
		db.SetMaxOpenConns(1)
		a.db, a.ownsDB = db, true
	}

	repo := storage.NewPostgresRepository(a.db)
	if err := repo.Ensure(ctx); err != nil {
		return nil, err
	}
	a.repo = repo
	return repo, nil
}

func (a *Application) dumpMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.logger.Warn("unable to write metrics textfile", "path", path, "error", err)
	}
}
