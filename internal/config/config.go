package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Elasticsearch ElasticsearchConfig
	Query         QueryConfig
	Redis         RedisConfig
	Cache         CacheConfig
	Metrics       MetricsConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// ElasticsearchConfig describes the remote search backend the gateway
// fronts. VersionReq is a semver range the backend must satisfy before
// the gateway starts serving, e.g. ">= 7.13.0, < 8.0.0".
type ElasticsearchConfig struct {
	Host       string
	Port       int
	Timeout    time.Duration
	VersionReq string
}

// QueryConfig carries the query-time settings handed opaquely to each
// geocode call. The gateway never interprets these beyond forwarding.
type QueryConfig struct {
	Index   string
	Limit   int
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis cache was configured at all. An empty
// host means the gateway runs without a response cache.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

type CacheConfig struct {
	SearchCacheTTL time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Host    string
	Port    int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine, the environment alone can carry the
		// whole configuration.
		if !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("BRAGI_HOST"),
			Port: viper.GetInt("BRAGI_PORT"),
			Env:  viper.GetString("BRAGI_ENV"),
		},
		Elasticsearch: ElasticsearchConfig{
			Host:       viper.GetString("ES_HOST"),
			Port:       viper.GetInt("ES_PORT"),
			Timeout:    time.Duration(viper.GetInt("ES_TIMEOUT")) * time.Second,
			VersionReq: viper.GetString("ES_VERSION_REQ"),
		},
		Query: QueryConfig{
			Index:   viper.GetString("QUERY_INDEX"),
			Limit:   viper.GetInt("QUERY_LIMIT"),
			Timeout: time.Duration(viper.GetInt("QUERY_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SearchCacheTTL: time.Duration(viper.GetInt("SEARCH_CACHE_TTL")) * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Host:    viper.GetString("METRICS_HOST"),
			Port:    viper.GetInt("METRICS_PORT"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Elasticsearch.Host == "" {
		cfg.Elasticsearch.Host = "localhost"
	}
	if cfg.Elasticsearch.Port == 0 {
		cfg.Elasticsearch.Port = 9200
	}
	if cfg.Elasticsearch.Timeout == 0 {
		cfg.Elasticsearch.Timeout = 10 * time.Second
	}
	if cfg.Elasticsearch.VersionReq == "" {
		cfg.Elasticsearch.VersionReq = ">= 7.13.0"
	}
	if cfg.Query.Index == "" {
		cfg.Query.Index = "munin"
	}
	if cfg.Query.Limit == 0 {
		cfg.Query.Limit = 10
	}
	if cfg.Query.Timeout == 0 {
		cfg.Query.Timeout = 5 * time.Second
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.SearchCacheTTL == 0 {
		cfg.Cache.SearchCacheTTL = 5 * time.Minute
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetMetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.Metrics.Host, c.Metrics.Port)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
