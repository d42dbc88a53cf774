package merge

import (
	"errors"
	"fmt"

	"arxml-merger/core/arxml"
)

// ErrNoDocuments is returned when no input document survived parsing.
var ErrNoDocuments = errors.New("merge: no parseable input documents")

// InternalConsistencyError reports a post-merge uniqueness violation. It is
// fatal: the path-keyed planner should make it unreachable, so its presence
// signals a planner defect, not bad input.
type InternalConsistencyError struct {
	Path arxml.Path
	Tag  string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("merge: internal consistency violation: duplicate %s under %s", e.Tag, e.Path)
}

// UnresolvedRuleError reports a rule_based conflict no rule matched. It is
// recovered by the fallback strategy and never fatal; it surfaces in the
// diagnostics list.
type UnresolvedRuleError struct {
	Path arxml.Path
	Kind ConflictKind
}

func (e *UnresolvedRuleError) Error() string {
	return fmt.Sprintf("merge: no rule matches %s conflict at %s", e.Kind, e.Path)
}

// InvalidDecisionError reports an interactive decision that is out of range
// for its conflict kind, e.g. merge_attributes on a type_mismatch. This is a
// configuration error surfaced to the caller; the engine never guesses a
// silent fallback.
type InvalidDecisionError struct {
	Path   arxml.Path
	Kind   ConflictKind
	Action Action
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("merge: decision %q is invalid for %s conflict at %s", e.Action, e.Kind, e.Path)
}
