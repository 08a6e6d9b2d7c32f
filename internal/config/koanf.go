package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/YorHaaa/ATAI/internal/labels"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/atai/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			GraphPath: "data/14_graph.nt",
		},
		Store: StoreConfig{
			Backend:   BackendMemory,
			URL:       "file:./atai.db",
			BatchSize: 500,
		},
		Server: ServerConfig{
			Transport:   "stdio",
			Addr:        ":8080",
			SSEEndpoint: "/sse",

			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Answer: AnswerConfig{
			Language:         "en",
			LiteralRelations: append([]string(nil), labels.DefaultLiteralRelations...),
			Synonyms:         defaultSynonyms(),
		},
		Recommend: RecommendConfig{TopK: 5},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{Addr: ":9090"},
	}
}

func defaultSynonyms() map[string][]string {
	out := make(map[string][]string, len(labels.DefaultRelationSynonyms))
	for label, words := range labels.DefaultRelationSynonyms {
		out[label] = append([]string(nil), words...)
	}
	return out
}

// Load builds the configuration from defaults, the config file (if any)
// and the environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"answer.literal_relations",
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"atai_graph_path":          "data.graph_path",
	"atai_entity_embeddings":   "data.entity_embeddings",
	"atai_relation_embeddings": "data.relation_embeddings",
	"atai_entity_ids":          "data.entity_ids",
	"atai_relation_ids":        "data.relation_ids",
	"atai_crowd_path":          "data.crowd_path",

	"atai_backend":           "store.backend",
	"libsql_url":             "store.url",
	"libsql_auth_token":      "store.auth_token",
	"db_max_open_conns":      "store.max_open_conns",
	"db_max_idle_conns":      "store.max_idle_conns",
	"db_conn_max_idle_sec":   "store.conn_max_idle_sec",
	"db_conn_max_life_sec":   "store.conn_max_life_sec",
	"atai_ingest_batch_size": "store.batch_size",

	"transport":         "server.transport",
	"atai_addr":         "server.addr",
	"atai_sse_endpoint": "server.sse_endpoint",
	"atai_http_addr":    "server.http_addr",
	"cors_origins":      "server.cors_origins",
	"rate_limit_reqs":   "server.rate_limit_requests",
	"rate_limit_window": "server.rate_limit_window",

	"atai_language":          "answer.language",
	"atai_literal_relations": "answer.literal_relations",
	"recommend_top_k":        "recommend.top_k",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_prometheus": "metrics.prometheus",
	"metrics_addr":       "metrics.addr",
}

// envTransformFunc maps environment variable names to config paths.
// Unmapped variables are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
