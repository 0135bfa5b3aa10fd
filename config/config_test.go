package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelperf/server/internal/sentiment"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "database/hotelperf.db", cfg.Database.Path)
	assert.Equal(t, 100, cfg.BatchProcessing.QueueSize)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxRetries)
	assert.False(t, cfg.Scraping.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Scraping.Schedule)
	assert.Equal(t, 10*time.Minute, cfg.Scraping.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Report.CacheTTL)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.test,https://b.test")
	t.Setenv("SCRAPE_ENABLED", "true")
	t.Setenv("SCRAPE_TIMEOUT", "90s")
	t.Setenv("BATCH_PROCESSOR_COUNT", "4")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Scraping.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Scraping.Timeout)
	assert.Equal(t, 4, cfg.BatchProcessing.ProcessorCount)

	t.Setenv("BATCH_QUEUE_SIZE", "many")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadLexicon_Default(t *testing.T) {
	lexicon, err := LoadLexicon("")
	require.NoError(t, err)

	positive, negative := lexicon.Size()
	assert.Positive(t, positive)
	assert.Positive(t, negative)

	c := sentiment.NewClassifier(lexicon)
	assert.Equal(t, sentiment.Positive, c.Classify("kamar bersih").Label)
	assert.Equal(t, sentiment.Negative, c.Classify("kamar kotor").Label)
}

func TestLoadLexicon_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("positive: [mantap]\nnegative: [zonk]\nnegation: [bukan]\n"), 0644))

	lexicon, err := LoadLexicon(path)
	require.NoError(t, err)

	c := sentiment.NewClassifier(lexicon)
	assert.Equal(t, sentiment.Positive, c.Classify("mantap").Label)
	assert.Equal(t, sentiment.Negative, c.Classify("bukan mantap").Label)

	_, err = LoadLexicon(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseLexicon_Errors(t *testing.T) {
	_, err := ParseLexicon([]byte("positive: [bagus]\n"))
	assert.Error(t, err)

	_, err = ParseLexicon([]byte("positive: [\n"))
	assert.Error(t, err)
}
