package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
)

// AllUserIDs returns every user identity in the directory. Used to resolve
// the target set for operational alert kinds.
func (db *DB) AllUserIDs(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT user_id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return ids, nil
}

// UserIDsByList filters the given identity list down to users that exist in
// the directory. Used to resolve the shared-recipient list for issue alerts.
func (db *DB) UserIDsByList(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id FROM users WHERE user_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to filter users: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return found, nil
}
