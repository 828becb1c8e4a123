package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/metrics"
)

func article(n int) domain.Article {
	return domain.Article{
		Title:   fmt.Sprintf("記事%d", n),
		Body:    fmt.Sprintf("本文%d", n),
		PubDate: "2021-05-03 09:15:00",
		Origin:  domain.OriginNHK,
		Genre:   domain.GenreSociety,
		Status:  domain.StatusNew,
	}
}

func newTestUploader(t *testing.T, store *memStore, batches *memBatches) *Uploader {
	t.Helper()
	u, err := NewUploader(UploaderDeps{Batches: batches, Store: store, Metrics: metrics.New()})
	require.NoError(t, err)
	return u
}

func TestUploadIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	batches := newMemBatches()
	u := newTestUploader(t, store, batches)
	ctx := context.Background()

	run := []domain.Article{article(1), article(2), article(3)}

	_, err := batches.Write(ctx, run)
	require.NoError(t, err)
	first, err := u.Upload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)
	assert.Equal(t, 1, first.Files)

	_, err = batches.Write(ctx, run)
	require.NoError(t, err)
	second, err := u.Upload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Duplicates)

	assert.Equal(t, 3, store.Len())
	assert.Len(t, batches.archived, 2)
}

func TestProcessDuplicateIdentityWithinBatch(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	u := newTestUploader(t, store, newMemBatches())

	report := u.Process(context.Background(), []domain.Article{article(1), article(1)})

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, 1, store.Len())
}

func TestProcessContinuesAfterIntegrityFailure(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	u := newTestUploader(t, store, newMemBatches())

	clash := article(1)
	clash.Body = "別の本文"
	untitled := article(4)
	untitled.Title = ""

	report := u.Process(context.Background(), []domain.Article{article(1), clash, untitled, article(2)})

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Failures)
	assert.Equal(t, 2, store.Len())
}

func TestUploadLeavesUnreadableBatch(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	batches := newMemBatches()
	u := newTestUploader(t, store, batches)
	ctx := context.Background()

	bad, err := batches.Write(ctx, []domain.Article{article(9)})
	require.NoError(t, err)
	batches.broken[bad] = true
	_, err = batches.Write(ctx, []domain.Article{article(1)})
	require.NoError(t, err)

	report, err := u.Upload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 1, report.Inserted)

	remaining, err := batches.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{bad}, remaining)
}

func TestNewUploaderRequiresStore(t *testing.T) {
	t.Parallel()

	_, err := NewUploader(UploaderDeps{})
	assert.Error(t, err)
}
