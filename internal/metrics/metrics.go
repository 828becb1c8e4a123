// Package metrics counts what each ingestion run fetched, extracted and stored.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"KijiScanner/internal/domain"
)

const namespace = "kijiscanner"

// Recorder owns a private registry so runs and tests do not share state.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	feeds         *prometheus.CounterVec
	articles      *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	dateFallbacks *prometheus.CounterVec
	storeResults  *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		feeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_total",
			Help:      "Feed fetches by origin and outcome",
		}, []string{"origin", "status"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_extracted_total",
			Help:      "Articles assembled from fetched pages",
		}, []string{"origin", "genre"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_fetch_failures_total",
			Help:      "Article pages skipped because the fetch failed",
		}, []string{"origin"}),
		dateFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "date_fallbacks_total",
			Help:      "Articles whose pub_date fell back to ingestion time",
		}, []string{"origin"}),
		storeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_results_total",
			Help:      "Store outcomes per article",
		}, []string{"result"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
	}
	r.registry.MustRegister(r.feeds, r.articles, r.fetchFailures, r.dateFallbacks, r.storeResults, r.lastRun)
	return r
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) FeedFetched(origin domain.Origin, ok bool) {
	if r == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	r.feeds.WithLabelValues(origin.String(), status).Inc()
}

func (r *Recorder) ArticleExtracted(origin domain.Origin, genre domain.Genre, dateFallback bool) {
	if r == nil {
		return
	}
	r.articles.WithLabelValues(origin.String(), genre.String()).Inc()
	if dateFallback {
		r.dateFallbacks.WithLabelValues(origin.String()).Inc()
	}
}

func (r *Recorder) ArticleFetchFailed(origin domain.Origin) {
	if r == nil {
		return
	}
	r.fetchFailures.WithLabelValues(origin.String()).Inc()
}

// StoreResult counts one store outcome (inserted, duplicate, integrity_failure).
func (r *Recorder) StoreResult(result string) {
	if r == nil {
		return
	}
	r.storeResults.WithLabelValues(result).Inc()
}

// RunCompleted stamps the last-run gauge.
func (r *Recorder) RunCompleted(unixSeconds float64) {
	if r == nil {
		return
	}
	r.lastRun.Set(unixSeconds)
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
