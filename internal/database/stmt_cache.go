package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/YorHaaa/ATAI/internal/metrics"
)

// getPreparedStmt returns or prepares and caches a statement
func (dm *DBManager) getPreparedStmt(ctx context.Context, db *sql.DB, sqlText string) (*sql.Stmt, error) {
	dm.stmtMu.RLock()
	stmt, ok := dm.stmtCache[sqlText]
	dm.stmtMu.RUnlock()
	if ok {
		metrics.Default().IncStmtCache(true)
		return stmt, nil
	}
	metrics.Default().IncStmtCache(false)

	stmt, err := db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	dm.stmtMu.Lock()
	if existing, ok := dm.stmtCache[sqlText]; ok {
		dm.stmtMu.Unlock()
		stmt.Close()
		return existing, nil
	}
	dm.stmtCache[sqlText] = stmt
	dm.stmtMu.Unlock()
	return stmt, nil
}

func (dm *DBManager) closeStatements() {
	dm.stmtMu.Lock()
	defer dm.stmtMu.Unlock()
	for k, stmt := range dm.stmtCache {
		stmt.Close()
		delete(dm.stmtCache, k)
	}
}
