package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
)

// CreateAlert persists a canonical alert record as a single-row transaction,
// assigning its identity and creation timestamp.
func (db *DB) CreateAlert(ctx context.Context, record *alert.Record) (*alert.Alert, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO alerts (alert_id, title, message, kind, occurred_at, app, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	a := &alert.Alert{
		ID:         id,
		Title:      record.Title,
		Message:    record.Message,
		Kind:       record.Kind,
		OccurredAt: record.OccurredAt,
		App:        record.App,
		Level:      record.Level,
	}
	err := db.conn.QueryRowContext(ctx, query,
		id,
		record.Title,
		record.Message,
		int(record.Kind),
		record.OccurredAt,
		record.App,
		record.Level,
	).Scan(&a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}

	slog.Info("Inserted new alert",
		"alert_id", id,
		"kind", record.Kind.String(),
		"app", record.App,
	)

	return a, nil
}

// GetAlert retrieves an alert by ID.
func (db *DB) GetAlert(ctx context.Context, alertID string) (*alert.Alert, error) {
	query := `
		SELECT alert_id, title, message, kind, occurred_at, app, level, created_at
		FROM alerts
		WHERE alert_id = $1
	`
	var a alert.Alert
	var kind int
	err := db.conn.QueryRowContext(ctx, query, alertID).Scan(
		&a.ID,
		&a.Title,
		&a.Message,
		&kind,
		&a.OccurredAt,
		&a.App,
		&a.Level,
		&a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	a.Kind = alert.Kind(kind)

	return &a, nil
}

// DeleteAlert removes an alert; its status rows go with it via the
// ON DELETE CASCADE constraint on alert_status.
func (db *DB) DeleteAlert(ctx context.Context, alertID string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM alerts WHERE alert_id = $1`, alertID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}

	slog.Info("Deleted alert", "alert_id", alertID)
	return nil
}
