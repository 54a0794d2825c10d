package normalizer

import (
	"errors"
	"testing"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
)

func TestNormalizeSearch(t *testing.T) {
	payload := []byte(`{
		"alert_title": "High error rate",
		"alert_message": "5xx above 2% for 5m",
		"detected_at": "2025-06-01T10:15:00Z",
		"level": "critical",
		"app": "checkout"
	}`)

	record, err := Normalize("search", payload)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if record.Kind != alert.KindSearchAlert {
		t.Errorf("Kind = %v, want %v", record.Kind, alert.KindSearchAlert)
	}
	if record.Title != "High error rate" {
		t.Errorf("Title = %q", record.Title)
	}
	if record.Message != "5xx above 2% for 5m" {
		t.Errorf("Message = %q", record.Message)
	}
	if record.OccurredAt != "2025-06-01T10:15:00Z" {
		t.Errorf("OccurredAt = %q", record.OccurredAt)
	}
	if record.App != "checkout" || record.Level != "critical" {
		t.Errorf("App/Level = %q/%q", record.App, record.Level)
	}
}

func TestNormalizeDashboard(t *testing.T) {
	payload := []byte(`{
		"title": "CPU saturation",
		"body": "node-7 above 95%",
		"triggered_at": "2025-06-01T11:00:00Z",
		"level": "warning",
		"app": "infra"
	}`)

	record, err := Normalize("dashboard", payload)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if record.Kind != alert.KindDashboardAlert {
		t.Errorf("Kind = %v, want %v", record.Kind, alert.KindDashboardAlert)
	}
	if record.Title != "CPU saturation" || record.Message != "node-7 above 95%" {
		t.Errorf("Title/Message = %q/%q", record.Title, record.Message)
	}
}

func TestNormalizeIssue(t *testing.T) {
	payload := []byte(`{
		"issue_title": "Login flakes on mobile",
		"description": "intermittent 401 after session refresh",
		"created_time": "2025-06-01T09:00:00Z",
		"assignees": ["user-1", "user-2"]
	}`)

	record, err := Normalize("issue", payload)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if record.Kind != alert.KindIssue {
		t.Errorf("Kind = %v, want %v", record.Kind, alert.KindIssue)
	}
	if len(record.Recipients) != 2 || record.Recipients[0] != "user-1" {
		t.Errorf("Recipients = %v", record.Recipients)
	}
}

func TestNormalizeIssueWithoutAssignees(t *testing.T) {
	record, err := Normalize("issue", []byte(`{"issue_title": "Orphaned issue"}`))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if len(record.Recipients) != 0 {
		t.Errorf("Recipients = %v, want empty", record.Recipients)
	}
}

func TestNormalizePipelineDerivesTitle(t *testing.T) {
	payload := []byte(`{
		"job": "build-api",
		"status": "FAILED",
		"finished_at": "2025-06-01T12:30:00Z",
		"app": "api"
	}`)

	record, err := Normalize("pipeline", payload)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if record.Kind != alert.KindPipelineBuild {
		t.Errorf("Kind = %v, want %v", record.Kind, alert.KindPipelineBuild)
	}
	if record.Title != "build-api: FAILED" {
		t.Errorf("Title = %q, want %q", record.Title, "build-api: FAILED")
	}
}

func TestNormalizeDeploymentDerivesTitle(t *testing.T) {
	payload := []byte(`{
		"app": "checkout",
		"version": "v1.4.2",
		"state": "ROLLED_BACK",
		"deployed_at": "2025-06-01T13:00:00Z"
	}`)

	record, err := Normalize("deployment", payload)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if record.Kind != alert.KindDeployment {
		t.Errorf("Kind = %v, want %v", record.Kind, alert.KindDeployment)
	}
	if record.Title != "checkout v1.4.2 ROLLED_BACK" {
		t.Errorf("Title = %q", record.Title)
	}
}

func TestNormalizeUnknownProducer(t *testing.T) {
	_, err := Normalize("pager", []byte(`{}`))
	if !errors.Is(err, ErrUnsupportedAlertKind) {
		t.Fatalf("Normalize() error = %v, want ErrUnsupportedAlertKind", err)
	}
}

func TestNormalizeProducerNameIsTrimmedAndLowered(t *testing.T) {
	record, err := Normalize("  Search ", []byte(`{"alert_title": "t", "alert_message": "m"}`))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if record.Kind != alert.KindSearchAlert {
		t.Errorf("Kind = %v, want %v", record.Kind, alert.KindSearchAlert)
	}
}

func TestNormalizeParsingErrors(t *testing.T) {
	tests := []struct {
		name     string
		producer string
		payload  string
	}{
		{"malformed json", "search", `{not json`},
		{"search missing title", "search", `{"alert_message": "m"}`},
		{"search missing message", "search", `{"alert_title": "t"}`},
		{"dashboard missing title", "dashboard", `{"body": "b"}`},
		{"dashboard missing body", "dashboard", `{"title": "t"}`},
		{"issue missing title", "issue", `{"description": "d"}`},
		{"pipeline missing job", "pipeline", `{"status": "OK"}`},
		{"pipeline missing status", "pipeline", `{"job": "build"}`},
		{"deployment missing app", "deployment", `{"state": "LIVE"}`},
		{"deployment missing state", "deployment", `{"app": "api"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.producer, []byte(tt.payload))
			if !errors.Is(err, ErrParsing) {
				t.Errorf("Normalize() error = %v, want ErrParsing", err)
			}
		})
	}
}

func TestProducersListsAllFamilies(t *testing.T) {
	names := Producers()
	if len(names) != 5 {
		t.Fatalf("Producers() returned %d names, want 5", len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"search", "dashboard", "issue", "pipeline", "deployment"} {
		if !seen[want] {
			t.Errorf("Producers() missing %q", want)
		}
	}
}
