// Package database persists analysis and comparison results in SQLite so
// past results can be fetched by id without re-scoring.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the database handle with pooling and prepared statements.
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool tracks the pool limits applied to the underlying sql.DB.
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool applies pool limits to db and records them for stats.
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics.
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// NewDB opens the SQLite database under dataDir, running migrations and
// preparing the hot statements.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "property_analyzer.db")

	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pool := NewConnectionPool(db, 25, 5, 5*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized with connection pooling",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns,
		"max_lifetime", pool.maxLifetime)

	return database, nil
}

// migrate creates the necessary tables.
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS property_analyses (
			id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL,
			neighborhood TEXT,
			score REAL NOT NULL,
			recommendation TEXT NOT NULL,
			analysis TEXT,
			breakdown TEXT, -- JSON map of category scores
			property TEXT,  -- JSON snapshot of the analyzed property
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS property_comparisons (
			id TEXT PRIMARY KEY,
			property_count INTEGER NOT NULL,
			best_match_id TEXT NOT NULL,
			score_difference REAL NOT NULL,
			summary TEXT NOT NULL,
			results TEXT NOT NULL, -- JSON array of ranked results
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_analyses_property_id ON property_analyses(property_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_score ON property_analyses(score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created ON property_analyses(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_comparisons_created ON property_comparisons(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements prepares the statements on the request path.
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_analysis": `INSERT INTO property_analyses (
			id, property_id, neighborhood, score, recommendation, analysis,
			breakdown, property, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"get_analysis": `SELECT id, property_id, neighborhood, score, recommendation,
			analysis, breakdown, property, created_at
			FROM property_analyses WHERE id = ?`,

		"list_analyses": `SELECT id, property_id, neighborhood, score, recommendation,
			analysis, breakdown, property, created_at
			FROM property_analyses ORDER BY created_at DESC LIMIT ?`,

		"insert_comparison": `INSERT INTO property_comparisons (
			id, property_count, best_match_id, score_difference, summary, results, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,

		"get_comparison": `SELECT id, property_count, best_match_id, score_difference,
			summary, results, created_at
			FROM property_comparisons WHERE id = ?`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement by name.
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics.
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes prepared statements and the connection.
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
