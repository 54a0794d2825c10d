// Package alert defines the canonical alert model shared by the pipeline.
package alert

import "fmt"

// Kind is the closed enumeration of alert sources. Each value carries a
// stable numeric index persisted in the database; never reorder.
type Kind int

const (
	KindSearchAlert Kind = iota
	KindDashboardAlert
	KindIssue
	KindPipelineBuild
	KindDeployment
)

// kindLabels maps each kind to its human-readable label.
var kindLabels = map[Kind]string{
	KindSearchAlert:    "SEARCH_ALERT",
	KindDashboardAlert: "DASHBOARD_ALERT",
	KindIssue:          "ISSUE",
	KindPipelineBuild:  "PIPELINE_BUILD",
	KindDeployment:     "DEPLOYMENT",
}

// String returns the human-readable label for the kind.
func (k Kind) String() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Valid reports whether k is a member of the closed enumeration.
func (k Kind) Valid() bool {
	_, ok := kindLabels[k]
	return ok
}

// Operational reports whether the kind targets every user (infrastructure
// alerts) as opposed to an explicit recipient list (issue-tracker alerts).
func (k Kind) Operational() bool {
	return k != KindIssue
}

// KindFromLabel converts a label back to its Kind.
// Returns false for labels outside the enumeration.
func KindFromLabel(label string) (Kind, bool) {
	for k, l := range kindLabels {
		if l == label {
			return k, true
		}
	}
	return 0, false
}
