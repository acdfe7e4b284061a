package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATASET_SOURCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Equal(t, SourceCSV, cfg.Dataset.Source)
	assert.Equal(t, 50.0, cfg.Ranking.WeightProjectName)
	assert.Equal(t, 30.0, cfg.Ranking.WeightLocality)
	assert.False(t, cfg.Enrichment.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "gemini-2.5-flash", cfg.Enrichment.Model)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("SEARCH_DEFAULT_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.True(t, cfg.Enrichment.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
}

func TestValidate(t *testing.T) {
	t.Run("database source requires DSN", func(t *testing.T) {
		cfg := &Config{Dataset: DatasetConfig{Source: SourceDatabase}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown source", func(t *testing.T) {
		cfg := &Config{Dataset: DatasetConfig{Source: "s3"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("default limit capped at max", func(t *testing.T) {
		cfg := &Config{
			Dataset: DatasetConfig{Source: SourceTables},
			Search:  SearchConfig{DefaultLimit: 50, MaxLimit: 20},
		}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 20, cfg.Search.DefaultLimit)
	})
}
