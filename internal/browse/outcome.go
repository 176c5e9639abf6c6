package browse

import (
	"fmt"

	"repobrowse/internal/common"
)

// Outcome is the result of a node-creating operation. The tree absorbs
// compatible concurrent differences (merge-in-place) and rejects
// incompatible ones (conflict) rather than corrupting state.
type Outcome int

const (
	// OutcomeCreated means a new node row was persisted.
	OutcomeCreated Outcome = iota
	// OutcomeMerged means the ref was folded into an existing node at the
	// same coordinate, or was already present (idempotent repeat).
	OutcomeMerged
	// OutcomeConflict means the existing node already carries a different
	// ref of the same kind. The state is untouched; the caller retries the
	// whole logical operation, since this usually signals an out-of-order
	// delete/create race.
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeMerged:
		return "merged"
	case OutcomeConflict:
		return "conflict"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CollisionError reports the coordinate where a merge was impossible.
// It matches common.ErrCollision under errors.Is.
type CollisionError struct {
	RepositoryName string
	ParentPath     string
	Name           string
	Kind           string // "component" or "asset"
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("node %s%s in repository %q already has a %s",
		e.ParentPath, e.Name, e.RepositoryName, e.Kind)
}

func (e *CollisionError) Is(target error) bool {
	return target == common.ErrCollision
}
