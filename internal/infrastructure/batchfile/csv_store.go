package batchfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"KijiScanner/internal/domain"
	"KijiScanner/internal/ports"
)

const (
	filePrefix = "japan_articles_"
	fileExt    = ".csv"
	nameLayout = "2006_01_02__15_04_05"
)

var header = []string{"title", "body", "pub_date", "source", "genre"}

// Store stages one CSV file per ingestion run in an incoming directory and
// moves processed files to an archive directory.
type Store struct {
	incomingDir  string
	processedDir string
	now          func() time.Time
}

var (
	_ ports.BatchSink   = (*Store)(nil)
	_ ports.BatchSource = (*Store)(nil)
)

// NewStore creates both directories if needed.
func NewStore(incomingDir, processedDir string) (*Store, error) {
	for _, dir := range []string{incomingDir, processedDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &Store{incomingDir: incomingDir, processedDir: processedDir, now: time.Now}, nil
}

// Write serializes the batch to a uniquely named file and returns its name.
func (s *Store) Write(ctx context.Context, articles []domain.Article) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s%s_%s%s", filePrefix, s.now().Format(nameLayout), uuid.NewString()[:8], fileExt)
	final := filepath.Join(s.incomingDir, name)

	tmp, err := os.CreateTemp(s.incomingDir, ".batch-*")
	if err != nil {
		return "", fmt.Errorf("create batch file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, articles); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close batch file: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("publish batch file: %w", err)
	}
	return name, nil
}

// List returns the staged batch names in lexical (chronological) order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.incomingDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.incomingDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Read decodes one staged batch. Rows come back with status "new".
func (s *Store) Read(ctx context.Context, name string) ([]domain.Article, error) {
	f, err := os.Open(filepath.Join(s.incomingDir, name))
	if err != nil {
		return nil, fmt.Errorf("open batch %s: %w", name, err)
	}
	defer f.Close()

	articles, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", name, err)
	}
	return articles, nil
}

// Archive moves a processed batch out of the incoming directory.
func (s *Store) Archive(ctx context.Context, name string) error {
	if s.processedDir == "" {
		return errors.New("processed directory is not configured")
	}
	if err := os.Rename(filepath.Join(s.incomingDir, name), filepath.Join(s.processedDir, name)); err != nil {
		return fmt.Errorf("archive batch %s: %w", name, err)
	}
	return nil
}

func encode(w io.Writer, articles []domain.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range articles {
		row := []string{a.Title, a.Body, a.PubDate, strconv.Itoa(int(a.Origin)), strconv.Itoa(int(a.Genre))}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}
	return nil
}

func decode(r io.Reader) ([]domain.Article, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.Join(first, ",") != strings.Join(header, ",") {
		return nil, fmt.Errorf("unexpected header %q", first)
	}

	var articles []domain.Article
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		origin, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("row source %q: %w", row[3], err)
		}
		genre, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("row genre %q: %w", row[4], err)
		}

		articles = append(articles, domain.Article{
			Title:   row[0],
			Body:    row[1],
			PubDate: row[2],
			Origin:  domain.Origin(origin),
			Genre:   domain.Genre(genre),
			Status:  domain.StatusNew,
		})
	}
	return articles, nil
}
