// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

/*
Package database provides the DuckDB-backed persistence layer for the
recommendation engine.

It owns the schema (properties, behavior signals, legacy interactions,
user preferences, learned preferences and recommendation history) and
implements every read and write the engine and the event consumers
need. All queries run through a prepared-statement cache keyed by query
text, and JSON-shaped columns (feature bags, snapshots, preference
arrays) are stored as serialized VARCHAR values.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/goccy/go-json"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/config"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/logging"
)

const (
	maxIdleConns    = 2
	connMaxLifetime = time.Hour
	connMaxIdleTime = 5 * time.Minute

	schemaTimeout = 60 * time.Second
)

// DB wraps a DuckDB connection with schema management and a
// prepared-statement cache.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	stmtCacheMu sync.RWMutex
	stmtCache   map[string]*sql.Stmt
}

// New opens (or creates) the DuckDB database at cfg.Path and ensures
// the schema exists. Use ":memory:" for an ephemeral database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("duckdb", connString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	configureConnectionPool(conn)

	db := &DB{
		conn:      conn,
		cfg:       cfg,
		stmtCache: make(map[string]*sql.Stmt),
	}

	if err := db.initialize(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", effectiveThreads(cfg)).
		Msg("Database initialized")

	return db, nil
}

// connString builds the DuckDB DSN with tuning parameters applied at
// open time rather than per-session.
func connString(cfg *config.DatabaseConfig) string {
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	preserveOrder := "false"
	if cfg.PreserveInsertionOrder {
		preserveOrder = "true"
	}

	return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s",
		cfg.Path, effectiveThreads(cfg), maxMemory, preserveOrder)
}

func effectiveThreads(cfg *config.DatabaseConfig) int {
	if cfg.Threads > 0 {
		return cfg.Threads
	}
	return runtime.NumCPU()
}

// DuckDB handles its own internal parallelism, so the pool stays small:
// one writer plus a handful of readers is enough for this workload.
func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)
	conn.SetConnMaxIdleTime(connMaxIdleTime)
}

func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	if err := db.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if err := db.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Conn exposes the underlying connection for callers that need raw
// access, primarily tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close flushes the WAL via CHECKPOINT and releases all cached
// prepared statements before closing the connection.
func (db *DB) Close() error {
	db.stmtCacheMu.Lock()
	for query, stmt := range db.stmtCache {
		if err := stmt.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close cached statement")
		}
		delete(db.stmtCache, query)
	}
	db.stmtCacheMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint on close failed")
	}

	return db.conn.Close()
}

// getStmt returns a cached prepared statement for the query, preparing
// and caching it on first use.
func (db *DB) getStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtCacheMu.RLock()
	stmt, ok := db.stmtCache[query]
	db.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	db.stmtCacheMu.Lock()
	defer db.stmtCacheMu.Unlock()

	// Another goroutine may have prepared it while we waited.
	if stmt, ok = db.stmtCache[query]; ok {
		return stmt, nil
	}

	stmt, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	db.stmtCache[query] = stmt
	return stmt, nil
}

func (db *DB) queryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func (db *DB) queryRowContext(ctx context.Context, query string, args ...interface{}) (*sql.Row, error) {
	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

func (db *DB) execContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	stmt, err := db.getStmt(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

func closeQuietly(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close rows")
	}
}

// marshalJSON serializes v for storage in a VARCHAR column. Nil and
// empty values are stored as SQL NULL so reads can distinguish "never
// set" from "set to empty".
func marshalJSON(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	s := string(data)
	if s == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: s, Valid: true}, nil
}

// unmarshalJSON decodes a nullable VARCHAR column into dst, leaving
// dst untouched for NULL values.
func unmarshalJSON(src sql.NullString, dst interface{}) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(src.String), dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON column: %w", err)
	}
	return nil
}
