package merge

import (
	"arxml-merger/core/arxml"
)

// Strategy selects how conflicting definitions are resolved, once per run.
type Strategy string

const (
	// StrategyConservative keeps the candidate from the lowest source index.
	StrategyConservative Strategy = "conservative"
	// StrategyLatestWins keeps the candidate from the highest source index.
	StrategyLatestWins Strategy = "latest_wins"
	// StrategyRuleBased consults the ordered rule list per conflict.
	StrategyRuleBased Strategy = "rule_based"
	// StrategyInteractive defers each conflict to a caller decision.
	StrategyInteractive Strategy = "interactive"
)

// IsValid reports whether s is a known strategy.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyConservative, StrategyLatestWins, StrategyRuleBased, StrategyInteractive:
		return true
	}
	return false
}

// ConflictKind classifies what kind of disagreement was found at a path.
type ConflictKind string

const (
	// KindDuplicateElement means the same tag at the same path with differing
	// attributes, text or content children.
	KindDuplicateElement ConflictKind = "duplicate_element"
	// KindTypeMismatch means different tags at the same path. Automatic
	// resolution is unsafe, so it always reaches the resolver with the
	// highest severity.
	KindTypeMismatch ConflictKind = "type_mismatch"
)

// Action is a concrete resolution decision for one conflict.
type Action string

const (
	// ActionKeepFirst keeps the candidate from the lowest source index.
	ActionKeepFirst Action = "keep_first"
	// ActionKeepLast keeps the candidate from the highest source index.
	ActionKeepLast Action = "keep_last"
	// ActionMergeAttributes synthesizes a node with the union of candidate
	// attribute sets (later source wins on collision) and the concatenated,
	// structurally deduplicated content children.
	ActionMergeAttributes Action = "merge_attributes"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	switch a {
	case ActionKeepFirst, ActionKeepLast, ActionMergeAttributes:
		return true
	}
	return false
}

// Rule is one entry of the rule_based strategy's ordered rule list.
type Rule struct {
	// ElementType matches the conflicting element tag; "*" matches any.
	ElementType string `json:"element_type"`
	// Kind matches the conflict kind.
	Kind ConflictKind `json:"conflict_kind"`
	// Action is applied when the rule matches.
	Action Action `json:"action"`
	// Priority orders rules; higher priority is evaluated first.
	Priority int `json:"priority"`
}

// Matches reports whether the rule applies to a conflict.
func (r Rule) Matches(c *Conflict) bool {
	if r.Kind != c.Kind {
		return false
	}
	return r.ElementType == "*" || r.ElementType == c.Candidates[0].Node.Tag
}

// Candidate is one source document's definition of a conflicted path.
type Candidate struct {
	// Source is the input document index the definition came from.
	Source int
	// Node is the defining element in that document.
	Node *arxml.Node
}

// Conflict is a path defined with differing content by two or more input
// documents. Created by the planner, consumed by the resolver.
type Conflict struct {
	Path       arxml.Path
	Kind       ConflictKind
	Candidates []Candidate
}

// Resolution is one entry of the append-only resolution log.
type Resolution struct {
	Path     arxml.Path   `json:"path"`
	Kind     ConflictKind `json:"kind"`
	Strategy Strategy     `json:"strategy"`
	Action   Action       `json:"action"`
	// Source is the winning input index. For merge_attributes it is the
	// highest contributing index, since the synthesized node takes collision
	// winners from there.
	Source int `json:"source"`
	// Fallback is set when rule_based found no matching rule and the run's
	// secondary strategy decided instead.
	Fallback bool `json:"fallback,omitempty"`
}

// Severity grades diagnostics.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Diagnostic is one recovered condition from parsing, planning, integrity
// checking or an external validation hook.
type Diagnostic struct {
	Severity Severity   `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Path     arxml.Path `json:"path,omitempty"`
	// Source is the input index the diagnostic concerns, or -1 when it
	// applies to the merged result.
	Source int `json:"source"`
}

// Diagnostic codes.
const (
	CodeParseError        = "parse_error"
	CodeDuplicatePath     = "duplicate_path"
	CodeUnresolvedRule    = "unresolved_rule"
	CodeDanglingReference = "dangling_reference"
	CodeValidation        = "validation"
)

// DecisionFunc supplies the caller's decision for one conflict under the
// interactive strategy.
type DecisionFunc func(*Conflict) (Action, error)

// ValidationHook is an external, pluggable validation capability invoked on
// the accepted merged tree. Its diagnostics are appended to the run's
// diagnostics list.
type ValidationHook func(*arxml.Node) []Diagnostic

// Input is one already-decoded document handed to the engine. Name is used
// only in diagnostics.
type Input struct {
	Name string
	Text string
}

// Options is the immutable per-run merge configuration. It is threaded
// explicitly through every component; the engine keeps no process-wide state.
type Options struct {
	// Strategy selects conflict resolution; defaults to conservative.
	Strategy Strategy

	// Fallback is the secondary strategy used by rule_based when no rule
	// matches; defaults to conservative. Only conservative and latest_wins
	// are meaningful here.
	Fallback Strategy

	// Rules is the ordered rule list for rule_based.
	Rules []Rule

	// Decide supplies decisions for the interactive strategy. Required when
	// Strategy is interactive and Merge (rather than a Session) is used.
	Decide DecisionFunc

	// ReferencePatterns overrides the reference name suffixes scanned by the
	// reference tracker; empty means arxml.DefaultReferencePatterns.
	ReferencePatterns []string

	// Hook is an optional external validation capability.
	Hook ValidationHook
}

func (o Options) strategy() Strategy {
	if o.Strategy == "" {
		return StrategyConservative
	}
	return o.Strategy
}

func (o Options) fallback() Strategy {
	if o.Fallback == "" {
		return StrategyConservative
	}
	return o.Fallback
}

// Result is the engine output: the merged document plus everything the
// surrounding tooling reports on.
type Result struct {
	// Document is the merged tree. Immutable once returned.
	Document *arxml.Node

	// Index is the path index of the merged tree.
	Index *arxml.PathIndex

	// References is the reference set of the merged tree, already resolved
	// against Index.
	References *arxml.ReferenceSet

	// Resolutions is the append-only resolution log in union-path order.
	Resolutions []Resolution

	// Diagnostics lists every recovered condition of the run.
	Diagnostics []Diagnostic

	// MergedInputs counts input documents that survived parsing/indexing.
	MergedInputs int

	// SkippedInputs counts input documents excluded by parse or index errors.
	SkippedInputs int

	// UnresolvedRefs counts dangling references in the merged tree.
	UnresolvedRefs int
}

// Summary renders the one-line outcome the surrounding tools show:
// "N of M files merged, K conflicts auto-resolved, J references unresolved".
func (r *Result) Summary() string {
	total := r.MergedInputs + r.SkippedInputs
	return summaryLine(r.MergedInputs, total, len(r.Resolutions), r.UnresolvedRefs)
}
