// Package normalizer converts producer-specific alert payloads into the
// canonical alert record. It is a pure transformation with no side effects.
package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
)

var (
	// ErrUnsupportedAlertKind is returned when the declared producer does
	// not map to a known alert kind.
	ErrUnsupportedAlertKind = errors.New("unsupported alert kind")
	// ErrParsing is returned when required fields are absent or malformed.
	ErrParsing = errors.New("parsing error")
)

// parseFunc converts one producer's native payload into a canonical record.
type parseFunc func(payload []byte) (*alert.Record, error)

// producers is the table mapping producer identity to kind and parser.
// Adding a producer means adding one row here; delivery logic is untouched.
var producers = map[string]struct {
	kind  alert.Kind
	parse parseFunc
}{
	"search":     {alert.KindSearchAlert, parseSearch},
	"dashboard":  {alert.KindDashboardAlert, parseDashboard},
	"issue":      {alert.KindIssue, parseIssue},
	"pipeline":   {alert.KindPipelineBuild, parsePipeline},
	"deployment": {alert.KindDeployment, parseDeployment},
}

// Producers returns the known producer identities.
func Producers() []string {
	names := make([]string, 0, len(producers))
	for name := range producers {
		names = append(names, name)
	}
	return names
}

// Normalize converts a producer-specific payload into a canonical record.
// Returns ErrUnsupportedAlertKind for an unknown producer and ErrParsing
// (wrapped with field detail) for absent or malformed required fields.
func Normalize(producer string, payload []byte) (*alert.Record, error) {
	entry, ok := producers[strings.ToLower(strings.TrimSpace(producer))]
	if !ok {
		return nil, fmt.Errorf("%w: producer %q", ErrUnsupportedAlertKind, producer)
	}

	record, err := entry.parse(payload)
	if err != nil {
		return nil, err
	}
	record.Kind = entry.kind
	return record, nil
}

func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrParsing, err)
	}
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", ErrParsing, field)
}

type searchPayload struct {
	AlertTitle   string `json:"alert_title"`
	AlertMessage string `json:"alert_message"`
	DetectedAt   string `json:"detected_at"`
	Level        string `json:"level"`
	App          string `json:"app"`
}

func parseSearch(payload []byte) (*alert.Record, error) {
	var p searchPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.AlertTitle == "" {
		return nil, missing("alert_title")
	}
	if p.AlertMessage == "" {
		return nil, missing("alert_message")
	}
	return &alert.Record{
		Title:      p.AlertTitle,
		Message:    p.AlertMessage,
		OccurredAt: p.DetectedAt,
		Level:      p.Level,
		App:        p.App,
	}, nil
}

type dashboardPayload struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	TriggeredAt string `json:"triggered_at"`
	Level       string `json:"level"`
	App         string `json:"app"`
}

func parseDashboard(payload []byte) (*alert.Record, error) {
	var p dashboardPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.Title == "" {
		return nil, missing("title")
	}
	if p.Body == "" {
		return nil, missing("body")
	}
	return &alert.Record{
		Title:      p.Title,
		Message:    p.Body,
		OccurredAt: p.TriggeredAt,
		Level:      p.Level,
		App:        p.App,
	}, nil
}

type issuePayload struct {
	IssueTitle  string   `json:"issue_title"`
	Description string   `json:"description"`
	CreatedTime string   `json:"created_time"`
	Assignees   []string `json:"assignees"`
}

func parseIssue(payload []byte) (*alert.Record, error) {
	var p issuePayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.IssueTitle == "" {
		return nil, missing("issue_title")
	}
	return &alert.Record{
		Title:      p.IssueTitle,
		Message:    p.Description,
		OccurredAt: p.CreatedTime,
		Recipients: p.Assignees,
	}, nil
}

type pipelinePayload struct {
	Job        string `json:"job"`
	Status     string `json:"status"`
	FinishedAt string `json:"finished_at"`
	App        string `json:"app"`
}

func parsePipeline(payload []byte) (*alert.Record, error) {
	var p pipelinePayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.Job == "" {
		return nil, missing("job")
	}
	if p.Status == "" {
		return nil, missing("status")
	}
	return &alert.Record{
		Title:      fmt.Sprintf("%s: %s", p.Job, p.Status),
		Message:    fmt.Sprintf("Pipeline job %s finished with status %s", p.Job, p.Status),
		OccurredAt: p.FinishedAt,
		App:        p.App,
	}, nil
}

type deploymentPayload struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	State      string `json:"state"`
	DeployedAt string `json:"deployed_at"`
}

func parseDeployment(payload []byte) (*alert.Record, error) {
	var p deploymentPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	if p.App == "" {
		return nil, missing("app")
	}
	if p.State == "" {
		return nil, missing("state")
	}
	return &alert.Record{
		Title:      fmt.Sprintf("%s %s %s", p.App, p.Version, p.State),
		Message:    fmt.Sprintf("Deployment of %s %s is %s", p.App, p.Version, p.State),
		OccurredAt: p.DeployedAt,
		App:        p.App,
	}, nil
}
