package merge

import (
	"context"
	"fmt"
)

// Merge unifies N input documents into one merged tree under the given
// options. It is a pure function of its inputs: no file, network or process
// side effects, modulo the decisions an interactive Decide callback supplies.
//
// Per-document parse and index failures are recovered (the document is
// excluded and a warning diagnostic recorded); Merge fails only when no
// document survives, when the configuration is invalid, or on an
// internal-invariant violation in the merged result. When ErrNoDocuments is
// returned the Result still carries the diagnostics explaining each skip.
func Merge(ctx context.Context, inputs []Input, opts Options) (*Result, error) {
	s, err := NewSession(inputs, opts)
	if err != nil {
		if s != nil {
			return &Result{Diagnostics: s.diagnostics, SkippedInputs: s.skipped}, err
		}
		return nil, err
	}

	for {
		conflict, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			break
		}
		if opts.Decide == nil {
			return nil, fmt.Errorf("merge: interactive strategy requires a decision callback")
		}
		action, err := opts.Decide(conflict)
		if err != nil {
			return nil, fmt.Errorf("merge: decision callback failed at %s: %w", conflict.Path, err)
		}
		if err := s.Decide(action); err != nil {
			return nil, err
		}
	}

	return s.Finish(ctx)
}

func summaryLine(merged, total, conflicts, unresolved int) string {
	return fmt.Sprintf("%d of %d files merged, %d conflicts auto-resolved, %d references unresolved",
		merged, total, conflicts, unresolved)
}
