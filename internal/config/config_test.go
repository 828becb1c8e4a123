package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KijiScanner/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Sources, 13)
	assert.Equal(t, 4, cfg.HTTP.Workers)
	assert.Equal(t, 20*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "data/incoming", cfg.Staging.IncomingDir)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiji.yaml")
	raw := `
database:
  dsn: postgres://file
http:
  timeout: 5s
  workers: 2
  hostBurst: 3
staging:
  incomingDir: /tmp/in
scheduler:
  interval: 30m
sources:
  - url: http://www3.asahi.com/rss/sports.rdf
    genre: sports
    origin: asahi
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(workersEnv, "8")

	cfg := Load(path)

	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 8, cfg.HTTP.Workers)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTP.HostInterval)
	assert.Equal(t, 3, cfg.HTTP.HostBurst)
	assert.Equal(t, "/tmp/in", cfg.Staging.IncomingDir)
	assert.Equal(t, "data/processed", cfg.Staging.ProcessedDir)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, domain.OriginAsahi, cfg.Sources[0].Origin)
	assert.Equal(t, domain.GenreSports, cfg.Sources[0].Genre)
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - origin: yomiuri\n"), 0o644))

	cfg := Load(path)
	assert.Len(t, cfg.Sources, 13)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.HTTP.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Sources = []domain.Source{{URL: "", Genre: domain.GenreSports, Origin: domain.OriginNHK}}
	assert.Error(t, cfg.Validate())
}
