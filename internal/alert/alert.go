package alert

import "time"

// Record is the canonical construction record produced by the normalizer.
// OccurredAt is the producer-supplied occurrence timestamp kept verbatim;
// it is display-only and never parsed for ordering.
type Record struct {
	Title      string
	Message    string
	Kind       Kind
	OccurredAt string
	App        string
	Level      string
	// Recipients is the explicit shared-recipient list for issue-tracker
	// alerts. Empty for operational kinds, which target all users.
	Recipients []string
}

// Alert is a persisted canonical incident record. Immutable after creation.
type Alert struct {
	ID         string
	Title      string
	Message    string
	Kind       Kind
	OccurredAt string
	App        string
	Level      string
	CreatedAt  time.Time
}

// Status is the per-user delivery/read record tied to one alert.
type Status struct {
	ID        string
	AlertID   string
	UserID    string
	IsRead    bool
	UpdatedAt time.Time
}
