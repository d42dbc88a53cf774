package merge

import (
	"fmt"
	"sort"
)

// Diagnostic code for escalated type mismatches.
const CodeTypeMismatch = "type_mismatch"

// resolver turns conflicts into actions under the run's strategy. The
// interactive strategy is not handled here; the Session suspends instead and
// feeds the caller's decision through applyAction.
type resolver struct {
	opts  Options
	rules []Rule // priority-sorted copy
}

func newResolver(opts Options) *resolver {
	r := &resolver{opts: opts}
	if opts.strategy() == StrategyRuleBased {
		r.rules = make([]Rule, len(opts.Rules))
		copy(r.rules, opts.Rules)
		sort.SliceStable(r.rules, func(i, j int) bool {
			return r.rules[i].Priority > r.rules[j].Priority
		})
	}
	return r
}

// resolve picks the action for a conflict under a non-interactive strategy.
// fallback reports that rule_based found no rule and the secondary strategy
// decided.
func (r *resolver) resolve(c *Conflict) (action Action, fallback bool) {
	switch r.opts.strategy() {
	case StrategyLatestWins:
		return ActionKeepLast, false
	case StrategyRuleBased:
		for _, rule := range r.rules {
			if rule.Matches(c) {
				return rule.Action, false
			}
		}
		if r.opts.fallback() == StrategyLatestWins {
			return ActionKeepLast, true
		}
		return ActionKeepFirst, true
	default:
		return ActionKeepFirst, false
	}
}

// validateAction checks a decision against the conflict kind. Merging
// attributes of two different element types is never safe, so
// merge_attributes is out of range for type_mismatch conflicts.
func validateAction(c *Conflict, a Action) error {
	if !a.IsValid() {
		return &InvalidDecisionError{Path: c.Path, Kind: c.Kind, Action: a}
	}
	if c.Kind == KindTypeMismatch && a == ActionMergeAttributes {
		return &InvalidDecisionError{Path: c.Path, Kind: c.Kind, Action: a}
	}
	return nil
}

// validateOptions rejects configurations the engine cannot honor before any
// work starts.
func validateOptions(opts Options) error {
	if opts.Strategy != "" && !opts.Strategy.IsValid() {
		return fmt.Errorf("merge: unknown strategy %q", opts.Strategy)
	}
	if opts.Fallback != "" && opts.Fallback != StrategyConservative && opts.Fallback != StrategyLatestWins {
		return fmt.Errorf("merge: fallback strategy must be conservative or latest_wins, got %q", opts.Fallback)
	}
	for _, rule := range opts.Rules {
		if !rule.Action.IsValid() {
			return fmt.Errorf("merge: rule for %q has unknown action %q", rule.ElementType, rule.Action)
		}
		if rule.Kind != KindDuplicateElement && rule.Kind != KindTypeMismatch {
			return fmt.Errorf("merge: rule for %q has unknown conflict kind %q", rule.ElementType, rule.Kind)
		}
		if rule.Kind == KindTypeMismatch && rule.Action == ActionMergeAttributes {
			return fmt.Errorf("merge: rule for %q: merge_attributes cannot resolve type_mismatch conflicts", rule.ElementType)
		}
	}
	return nil
}
