package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

const defaultBatchSize = 500

// DBManager owns the libsql handle and its prepared statements.
type DBManager struct {
	config *Config
	db     *sql.DB
	mu     sync.RWMutex

	stmtMu    sync.RWMutex
	stmtCache map[string]*sql.Stmt
}

// NewDBManager opens the database and ensures the schema exists.
func NewDBManager(config *Config) (*DBManager, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	manager := &DBManager{
		config:    config,
		stmtCache: make(map[string]*sql.Stmt),
	}
	if _, err := manager.getDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return manager, nil
}

// getDB returns the database handle, opening it on first use
func (dm *DBManager) getDB() (*sql.DB, error) {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()
	if db != nil {
		return db, nil
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db != nil {
		return dm.db, nil
	}

	newDb, err := sql.Open("libsql", connectionURL(dm.config.URL, dm.config.AuthToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connector: %w", err)
	}
	if err := dm.initialize(newDb); err != nil {
		newDb.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if dm.config.MaxOpenConns > 0 {
		newDb.SetMaxOpenConns(dm.config.MaxOpenConns)
	}
	if dm.config.MaxIdleConns > 0 {
		newDb.SetMaxIdleConns(dm.config.MaxIdleConns)
	}
	if dm.config.ConnMaxIdleSec > 0 {
		newDb.SetConnMaxIdleTime(time.Duration(dm.config.ConnMaxIdleSec) * time.Second)
	}
	if dm.config.ConnMaxLifeSec > 0 {
		newDb.SetConnMaxLifetime(time.Duration(dm.config.ConnMaxLifeSec) * time.Second)
	}

	dm.db = newDb
	stats := newDb.Stats()
	metrics.Default().ObservePoolStats(stats.InUse, stats.Idle)
	logging.Info().Str("url", redactURL(dm.config.URL)).Msg("Database ready")
	return newDb, nil
}

// connectionURL appends the auth token to remote URLs
func connectionURL(dbURL, authToken string) string {
	if strings.HasPrefix(dbURL, "file:") || authToken == "" {
		return dbURL
	}
	if u, err := url.Parse(dbURL); err == nil {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
		return u.String()
	}
	if strings.Contains(dbURL, "?") {
		return dbURL + "&authToken=" + url.QueryEscape(authToken)
	}
	return dbURL + "?authToken=" + url.QueryEscape(authToken)
}

func redactURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.RawQuery == "" {
		return dbURL
	}
	q := u.Query()
	if q.Has("authToken") {
		q.Set("authToken", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// initialize creates tables and indexes if they don't exist
func (dm *DBManager) initialize(db *sql.DB) error {
	done := metrics.TimeOp("db_initialize")
	success := false
	defer func() { done(success) }()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for initialization: %w", err)
	}
	defer tx.Rollback()

	for _, statement := range schema {
		if _, err := tx.Exec(statement); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	success = true
	return nil
}

// Close releases prepared statements and the database handle.
func (dm *DBManager) Close() error {
	dm.closeStatements()
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	return err
}

// PoolStats reports connection pool usage and publishes it to metrics.
func (dm *DBManager) PoolStats() (inUse, idle int) {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()
	if db == nil {
		return 0, 0
	}
	stats := db.Stats()
	metrics.Default().ObservePoolStats(stats.InUse, stats.Idle)
	return stats.InUse, stats.Idle
}
