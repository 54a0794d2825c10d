package fanout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

// ErrNoTargetUsers is returned when recipient resolution yields an empty
// set. Such messages are dead-lettered, never retried.
var ErrNoTargetUsers = errors.New("no target users resolved for alert")

// Resolver maps an AlertCreated event to its target user set. The policy is
// pluggable: the issue-sharing recipient semantics are still being finalized
// with stakeholders, so delivery logic never hard-codes them.
type Resolver interface {
	Resolve(ctx context.Context, created *events.AlertCreated) ([]string, error)
}

// DirectoryResolver resolves recipients against the user directory:
// operational kinds target every user, issue-tracker kinds target the
// event's explicit shared-recipient list (filtered for existence).
type DirectoryResolver struct {
	dir Directory
}

// NewDirectoryResolver creates a resolver backed by the user directory.
func NewDirectoryResolver(dir Directory) *DirectoryResolver {
	return &DirectoryResolver{dir: dir}
}

// Resolve returns the target user set for the event.
// Returns ErrNoTargetUsers when the set is empty.
func (r *DirectoryResolver) Resolve(ctx context.Context, created *events.AlertCreated) ([]string, error) {
	kind, ok := alert.KindFromLabel(created.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown alert kind %q", created.Kind)
	}

	var (
		userIDs []string
		err     error
	)
	if kind.Operational() {
		userIDs, err = r.dir.AllUserIDs(ctx)
	} else {
		userIDs, err = r.dir.UserIDsByList(ctx, created.RecipientIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target users: %w", err)
	}

	if len(userIDs) == 0 {
		return nil, fmt.Errorf("%w: alert %s kind %s", ErrNoTargetUsers, created.AlertID, created.Kind)
	}
	return userIDs, nil
}
