package alert

import "time"

// View is the wire representation of an alert pushed to subscribers and
// returned by the list API. Kept separate from the persistence row so the
// data model is not coupled to its serialized shape.
type View struct {
	AlertID    string `json:"alertId"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Kind       string `json:"kind"`
	App        string `json:"app,omitempty"`
	Level      string `json:"level,omitempty"`
	OccurredAt string `json:"occurredAt,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// StatusView is the wire representation of a per-user alert entry.
type StatusView struct {
	View
	StatusID  string `json:"alertStatusId"`
	IsRead    bool   `json:"isRead"`
	UpdatedAt string `json:"updatedAt"`
}

// ViewFromAlert maps a persisted alert to its wire view.
func ViewFromAlert(a *Alert) View {
	return View{
		AlertID:    a.ID,
		Title:      a.Title,
		Message:    a.Message,
		Kind:       a.Kind.String(),
		App:        a.App,
		Level:      a.Level,
		OccurredAt: a.OccurredAt,
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// StatusViewFrom maps an alert and its per-user status to a list entry.
func StatusViewFrom(a *Alert, s *Status) StatusView {
	return StatusView{
		View:      ViewFromAlert(a),
		StatusID:  s.ID,
		IsRead:    s.IsRead,
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
