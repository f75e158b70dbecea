package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
	"go.uber.org/zap"

	"github.com/Resurrectum/media-structurer/internal/metrics"
)

// Default timeout for point operations against the store.
const defaultTimeout = 5 * time.Second

// Store manages the SQLite fingerprint database.
type Store struct {
	db     *sql.DB
	dbPath string
	log    *zap.SugaredLogger
}

// Open opens (creating if necessary) the store at dbPath. The parent
// directory must exist and be writable.
func Open(ctx context.Context, dbPath string, log *zap.SugaredLogger) (*Store, error) {
	// WAL keeps readers cheap; busy_timeout guards against transient
	// "database is locked" errors from leftover WAL readers.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Errorf("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One writer connection for the life of the run serializes all
	// mutations without application-level locking.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		log:    log,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Errorf("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.Debugf("database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS media_records (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time REAL NOT NULL,
		kind TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		duration REAL,
		recorded_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_media_records_fingerprint ON media_records(fingerprint);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the store file.
func (s *Store) Path() string {
	return s.dbPath
}

// recordQuery records store operation metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
