package database

import (
	"os"
)

// Config holds the database configuration
type Config struct {
	URL            string
	AuthToken      string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdleSec int
	ConnMaxLifeSec int
	// BatchSize bounds the rows written per Insert transaction and paces
	// ingest progress logging.
	BatchSize int
}

// NewConfig creates a new Config from environment variables
func NewConfig() *Config {
	url := os.Getenv("LIBSQL_URL")
	if url == "" {
		url = "file:./atai.db"
	}

	return &Config{
		URL:       url,
		AuthToken: os.Getenv("LIBSQL_AUTH_TOKEN"),
		BatchSize: defaultBatchSize,
	}
}
