package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocoding-gateway/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Elasticsearch.Host)
	assert.Equal(t, 9200, cfg.Elasticsearch.Port)
	assert.Equal(t, 10*time.Second, cfg.Elasticsearch.Timeout)
	assert.Equal(t, ">= 7.13.0", cfg.Elasticsearch.VersionReq)
	assert.Equal(t, "munin", cfg.Query.Index)
	assert.Equal(t, 10, cfg.Query.Limit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ES_HOST", "search.internal")
	t.Setenv("ES_PORT", "9300")
	t.Setenv("ES_VERSION_REQ", ">= 7.13.0, < 8.0.0")
	t.Setenv("REDIS_HOST", "cache.internal")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "search.internal", cfg.Elasticsearch.Host)
	assert.Equal(t, 9300, cfg.Elasticsearch.Port)
	assert.Equal(t, ">= 7.13.0, < 8.0.0", cfg.Elasticsearch.VersionReq)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
}
