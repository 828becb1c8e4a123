package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/ports"
)

var errTransport = errors.New("connection reset by peer")

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	fail   map[string]bool
	status map[string]int
	// block holds a fetch until ctx ends; started is signalled once it is held.
	block   map[string]bool
	started chan string
	calls   []string
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.url, e.code)
}

func (e *statusError) HTTPStatus() int {
	return e.code
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.block[url] {
		if f.started != nil {
			f.started <- url
		}
		<-ctx.Done()
		return nil, fmt.Errorf("request %s: %w", url, ctx.Err())
	}
	if code, ok := f.status[url]; ok {
		return nil, &statusError{url: url, code: code}
	}
	if f.fail[url] {
		return nil, fmt.Errorf("request %s: %w", url, errTransport)
	}
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("request %s: not found", url)
	}
	return []byte(page), nil
}

// memStore mirrors the articles table: identity lookup plus a unique title.
type memStore struct {
	mu     sync.Mutex
	rows   []domain.Article
	titles map[string]bool
}

func newMemStore() *memStore {
	return &memStore{titles: map[string]bool{}}
}

func (m *memStore) Exists(_ context.Context, a domain.Article) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Identity() == a.Identity() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Insert(_ context.Context, a domain.Article) (ports.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Title == "" || a.Body == "" {
		return ports.IntegrityFailure, errors.New("not null violation")
	}
	if m.titles[a.Title] {
		return ports.IntegrityFailure, errors.New("unique violation on title")
	}
	m.titles[a.Title] = true
	m.rows = append(m.rows, a)
	return ports.Inserted, nil
}

func (m *memStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memBatches struct {
	order    []string
	batches  map[string][]domain.Article
	archived []string
	broken   map[string]bool
}

func newMemBatches() *memBatches {
	return &memBatches{batches: map[string][]domain.Article{}, broken: map[string]bool{}}
}

func (m *memBatches) Write(_ context.Context, articles []domain.Article) (string, error) {
	name := fmt.Sprintf("batch-%d.csv", len(m.order)+len(m.archived))
	m.order = append(m.order, name)
	m.batches[name] = append([]domain.Article(nil), articles...)
	return name, nil
}

func (m *memBatches) List(context.Context) ([]string, error) {
	return append([]string(nil), m.order...), nil
}

func (m *memBatches) Read(_ context.Context, name string) ([]domain.Article, error) {
	if m.broken[name] {
		return nil, errors.New("malformed batch")
	}
	return m.batches[name], nil
}

func (m *memBatches) Archive(_ context.Context, name string) error {
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.archived = append(m.archived, name)
	return nil
}
