// Package database provides PostgreSQL operations for the alerts,
// alert_status and users tables.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

var (
	// ErrAlertNotFound is returned when an alert does not exist.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrStatusNotFound is returned when an alert status does not exist or
	// is not owned by the requesting user.
	ErrStatusNotFound = errors.New("alert status not found")
	// ErrAlertCreateFailed is returned when a status row cannot be created
	// because the alert no longer exists.
	ErrAlertCreateFailed = errors.New("alert status create failed: alert gone")
)

// DB wraps a database connection and provides alert operations.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection using the provided DSN.
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to PostgreSQL database")

	return &DB{conn: conn}, nil
}

// NewDBWithConn wraps an existing connection. Primarily for testing.
func NewDBWithConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		slog.Info("Closing database connection")
		return db.conn.Close()
	}
	return nil
}
