// Package merge implements the ARXML merge engine: it unifies the package
// hierarchies of N input documents into one consistent tree, resolves
// naming and content conflicts under a selectable strategy, and validates
// that the merged result keeps every cross-reference resolvable.
//
// # Pipeline
//
// Each input is parsed and indexed (concurrently, the inputs are independent
// until planning), then the planner computes the union of all short-name
// paths in first-seen order and classifies every path as additive, identical
// or conflicting. Conflicts are resolved by the configured strategy while the
// merged tree is built path by path; afterwards references are rewritten and
// checked and short-name uniqueness is verified exhaustively.
//
// # Strategies
//
//   - conservative (default): the lowest input index wins every conflict.
//   - latest_wins: the highest input index wins.
//   - rule_based: an ordered rule list matched on element tag and conflict
//     kind decides; unmatched conflicts fall back to a secondary strategy
//     and are flagged.
//   - interactive: each conflict suspends the Session until the caller
//     supplies a decision.
//
// # Purity
//
// The engine performs no I/O. Merge is a function of (inputs, options) to
// (document, resolution log, diagnostics); every recovered condition is
// reported in the diagnostics list, never swallowed. Separate invocations
// share no state and may run concurrently.
package merge
