package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"groww-sentinel/internal/models"
)

// SQLiteStore implements AlertStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based alert store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Alerts table, keyed by id
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		kind TEXT NOT NULL,
		threshold REAL NOT NULL,
		base_price REAL,
		last_price REAL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		triggered_at DATETIME,
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol);
	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load reads the full alert collection. A missing or empty table yields
// an empty slice.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, kind, threshold, base_price, last_price, status, created_at, triggered_at, note
		FROM alerts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var (
			a           models.Alert
			basePrice   sql.NullFloat64
			lastPrice   sql.NullFloat64
			triggeredAt sql.NullTime
			note        sql.NullString
		)

		if err := rows.Scan(&a.ID, &a.Symbol, (*string)(&a.Kind), &a.Threshold,
			&basePrice, &lastPrice, (*string)(&a.Status), &a.CreatedAt, &triggeredAt, &note); err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}

		if basePrice.Valid {
			v := basePrice.Float64
			a.BasePrice = &v
		}
		if lastPrice.Valid {
			v := lastPrice.Float64
			a.LastPrice = &v
		}
		if triggeredAt.Valid {
			t := triggeredAt.Time
			a.TriggeredAt = &t
		}
		a.Note = note.String

		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// SaveAll replaces the persisted collection with the given one inside a
// single transaction. The previous snapshot stays visible to readers
// until the transaction commits.
func (s *SQLiteStore) SaveAll(ctx context.Context, alerts []models.Alert) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
		return fmt.Errorf("clearing alerts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts (id, symbol, kind, threshold, base_price, last_price, status, created_at, triggered_at, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range alerts {
		a := &alerts[i]

		var basePrice, lastPrice interface{}
		if a.BasePrice != nil {
			basePrice = *a.BasePrice
		}
		if a.LastPrice != nil {
			lastPrice = *a.LastPrice
		}
		var triggeredAt interface{}
		if a.TriggeredAt != nil {
			triggeredAt = *a.TriggeredAt
		}

		if _, err := stmt.ExecContext(ctx, a.ID, a.Symbol, string(a.Kind), a.Threshold,
			basePrice, lastPrice, string(a.Status), a.CreatedAt, triggeredAt, a.Note); err != nil {
			return fmt.Errorf("inserting alert %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
