// Package config loads service settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Store     StoreConfig     `koanf:"store"`
	Server    ServerConfig    `koanf:"server"`
	Answer    AnswerConfig    `koanf:"answer"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DataConfig points at the files the engines are built from.
type DataConfig struct {
	GraphPath          string `koanf:"graph_path"`
	EntityEmbeddings   string `koanf:"entity_embeddings"`
	RelationEmbeddings string `koanf:"relation_embeddings"`
	EntityIDs          string `koanf:"entity_ids"`
	RelationIDs        string `koanf:"relation_ids"`
	CrowdPath          string `koanf:"crowd_path"`
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendLibSQL = "libsql"
)

// StoreConfig selects where factual and crowd queries are served from.
type StoreConfig struct {
	Backend        string `koanf:"backend" validate:"oneof=memory libsql"`
	URL            string `koanf:"url"`
	AuthToken      string `koanf:"auth_token"`
	MaxOpenConns   int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns   int    `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxIdleSec int    `koanf:"conn_max_idle_sec" validate:"gte=0"`
	ConnMaxLifeSec int    `koanf:"conn_max_life_sec" validate:"gte=0"`
	BatchSize      int    `koanf:"batch_size" validate:"gte=1"`
}

// ServerConfig configures the MCP and REST transports.
type ServerConfig struct {
	Transport   string `koanf:"transport" validate:"oneof=stdio sse"`
	Addr        string `koanf:"addr" validate:"required"`
	SSEEndpoint string `koanf:"sse_endpoint" validate:"startswith=/"`
	// HTTPAddr enables the REST API when set.
	HTTPAddr          string        `koanf:"http_addr"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
}

// AnswerConfig tunes the factual answer path.
type AnswerConfig struct {
	Language         string   `koanf:"language" validate:"required"`
	LiteralRelations []string `koanf:"literal_relations" validate:"dive,required"`
	// Synonyms maps a relation label to the words rewritten to it. A table
	// in the config file replaces the default one.
	Synonyms map[string][]string `koanf:"synonyms"`
}

// RecommendConfig tunes the recommender.
type RecommendConfig struct {
	TopK int `koanf:"top_k" validate:"gte=1,lte=100"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Prometheus bool   `koanf:"prometheus"`
	Addr       string `koanf:"addr"`
}

// EmbeddingsEnabled reports whether all four embedding files are configured.
func (d DataConfig) EmbeddingsEnabled() bool {
	return d.EntityEmbeddings != "" && d.RelationEmbeddings != "" && d.EntityIDs != "" && d.RelationIDs != ""
}
