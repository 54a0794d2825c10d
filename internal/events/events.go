// Package events defines the event structures for the alert-created and
// user-alert topics.
package events

// SchemaVersion is the current event schema version, carried on every
// message so consumers can reject shapes they do not understand.
const SchemaVersion = 1

// AlertCreated is published to the alert-created topic after an alert row
// is durably committed. Publication is at-least-once; the persisted alert
// is the source of truth, so duplicates are absorbed downstream by the
// idempotent status insert.
type AlertCreated struct {
	AlertID       string   `json:"alert_id"`
	SchemaVersion int      `json:"schema_version"`
	Kind          string   `json:"kind"`
	ProducerApp   string   `json:"producer_app,omitempty"`
	RecipientIDs  []string `json:"recipient_ids,omitempty"`
}

// UserAlert is published to the user-alert topic, one message per resolved
// target user, after that user's status row exists.
type UserAlert struct {
	AlertID       string `json:"alert_id"`
	UserID        string `json:"user_id"`
	StatusID      string `json:"status_id"`
	SchemaVersion int    `json:"schema_version"`
}

// NewUserAlert builds a UserAlert for one resolved target user.
func NewUserAlert(alertID, userID, statusID string) *UserAlert {
	return &UserAlert{
		AlertID:       alertID,
		UserID:        userID,
		StatusID:      statusID,
		SchemaVersion: SchemaVersion,
	}
}
