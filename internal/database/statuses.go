package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
)

// foreignKeyViolation is the PostgreSQL error code for FK constraint failures.
const foreignKeyViolation = "23503"

// InsertStatusIdempotent creates the per-user status row for an alert.
// Uses INSERT ... ON CONFLICT DO NOTHING RETURNING on the unique
// (alert_id, user_id) pair, which is the dedupe boundary for redelivered
// AlertCreated events. Returns the status_id if a new row was inserted, or
// nil if it already existed. Returns ErrAlertCreateFailed if the alert row
// no longer exists.
func (db *DB) InsertStatusIdempotent(ctx context.Context, alertID, userID string) (*string, error) {
	query := `
		INSERT INTO alert_status (status_id, alert_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (alert_id, user_id) DO NOTHING
		RETURNING status_id
	`

	var statusID string
	err := db.conn.QueryRowContext(ctx, query, uuid.NewString(), alertID, userID).Scan(&statusID)
	if err != nil {
		if err == sql.ErrNoRows {
			// No row was inserted (conflict occurred, row already exists)
			slog.Debug("Alert status already exists, skipping",
				"alert_id", alertID,
				"user_id", userID,
			)
			return nil, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return nil, fmt.Errorf("%w: alert %s", ErrAlertCreateFailed, alertID)
		}
		return nil, fmt.Errorf("failed to insert alert status: %w", err)
	}

	slog.Debug("Inserted new alert status",
		"status_id", statusID,
		"alert_id", alertID,
		"user_id", userID,
	)

	return &statusID, nil
}

// setRead flips the read flag on a status row owned by the given user and
// refreshes updated_at.
func (db *DB) setRead(ctx context.Context, statusID, userID string, read bool) error {
	query := `
		UPDATE alert_status
		SET is_read = $3, updated_at = NOW()
		WHERE status_id = $1 AND user_id = $2
	`
	result, err := db.conn.ExecContext(ctx, query, statusID, userID, read)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrStatusNotFound, statusID)
	}

	slog.Debug("Updated alert status read flag",
		"status_id", statusID,
		"user_id", userID,
		"is_read", read,
	)
	return nil
}

// MarkRead marks one of the user's alert statuses as read.
func (db *DB) MarkRead(ctx context.Context, statusID, userID string) error {
	return db.setRead(ctx, statusID, userID, true)
}

// MarkUnread marks one of the user's alert statuses as unread.
func (db *DB) MarkUnread(ctx context.Context, statusID, userID string) error {
	return db.setRead(ctx, statusID, userID, false)
}

// ListForUser returns the user's alerts joined with their read state,
// newest first by the system-assigned creation time.
func (db *DB) ListForUser(ctx context.Context, userID string, limit, offset int) ([]alert.StatusView, error) {
	query := `
		SELECT a.alert_id, a.title, a.message, a.kind, a.occurred_at, a.app, a.level, a.created_at,
		       s.status_id, s.is_read, s.updated_at
		FROM alert_status s
		JOIN alerts a ON a.alert_id = s.alert_id
		WHERE s.user_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := db.conn.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts for user: %w", err)
	}
	defer rows.Close()

	views := make([]alert.StatusView, 0, limit)
	for rows.Next() {
		var a alert.Alert
		var s alert.Status
		var kind int
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Message, &kind, &a.OccurredAt, &a.App, &a.Level, &a.CreatedAt,
			&s.ID, &s.IsRead, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		a.Kind = alert.Kind(kind)
		s.AlertID = a.ID
		s.UserID = userID
		views = append(views, alert.StatusViewFrom(&a, &s))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert rows: %w", err)
	}

	return views, nil
}
