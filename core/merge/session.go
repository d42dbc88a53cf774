package merge

import (
	"context"
	"fmt"
	"sync"

	"arxml-merger/core/arxml"
)

// Session is the resumable merge state machine. Non-interactive runs step
// through it without ever suspending; under the interactive strategy Next
// returns each pending conflict and Decide resumes with the caller's choice.
// Modeling the suspension explicitly keeps the engine free of blocking I/O
// and lets synchronous and asynchronous hosts drive it alike.
//
// A Session is single-use and not safe for concurrent use; separate merge
// invocations get separate sessions.
type Session struct {
	opts     Options
	sources  []*source
	plan     []*planEntry
	pos      int
	pending  *Conflict
	builder  *builder
	resolver *resolver

	resolutions []Resolution
	diagnostics []Diagnostic
	skipped     int
	finished    bool
}

// NewSession parses and indexes every input and plans the merge. Documents
// that fail to parse or index are excluded with a warning diagnostic; the
// session proceeds with the remainder. ErrNoDocuments is returned when
// nothing survives; the partial diagnostics still describe why.
func NewSession(inputs []Input, opts Options) (*Session, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	s := &Session{opts: opts, resolver: newResolver(opts)}

	// Inputs are independent until planning; parse and index them
	// concurrently and join before the planner starts.
	type slot struct {
		src *source
		err error
	}
	slots := make([]slot, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in Input) {
			defer wg.Done()
			root, err := arxml.Parse(in.Text)
			if err != nil {
				slots[i].err = err
				return
			}
			idx, err := arxml.BuildIndex(root)
			if err != nil {
				slots[i].err = err
				return
			}
			slots[i].src = &source{index: i, name: in.Name, root: root, paths: idx}
		}(i, in)
	}
	wg.Wait()

	for i, sl := range slots {
		if sl.err != nil {
			s.skipped++
			code := CodeParseError
			if _, ok := sl.err.(*arxml.DuplicatePathError); ok {
				code = CodeDuplicatePath
			}
			s.diagnostics = append(s.diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     code,
				Message:  fmt.Sprintf("skipping %s: %v", inputName(inputs[i]), sl.err),
				Source:   i,
			})
			continue
		}
		s.sources = append(s.sources, sl.src)
	}

	if len(s.sources) == 0 {
		return s, ErrNoDocuments
	}

	s.plan = buildPlan(s.sources)
	s.builder = newBuilder(s.sources)
	return s, nil
}

// Next advances the merge. Under the interactive strategy it returns the
// next pending conflict, to be answered with Decide; otherwise it runs the
// whole plan and returns (nil, nil). Cancellation is honored between path
// resolutions; no partial result escapes, since the merged tree is only
// exposed by Finish.
func (s *Session) Next(ctx context.Context) (*Conflict, error) {
	if s.pending != nil {
		return s.pending, nil
	}

	interactive := s.opts.strategy() == StrategyInteractive

	for s.pos < len(s.plan) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := s.plan[s.pos]

		if e.conflict == nil {
			if len(e.candidates) == 1 {
				s.builder.placeCandidate(e, 0)
			} else {
				s.builder.placeIdentical(e)
			}
			s.pos++
			continue
		}

		if interactive {
			s.pending = e.conflict
			return s.pending, nil
		}

		action, fellBack := s.resolver.resolve(e.conflict)
		if fellBack {
			ue := &UnresolvedRuleError{Path: e.path, Kind: e.conflict.Kind}
			s.diagnostics = append(s.diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeUnresolvedRule,
				Message:  ue.Error(),
				Path:     e.path,
				Source:   -1,
			})
		}
		if err := s.apply(e, action, fellBack); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Decide resumes a suspended interactive session with the caller's decision
// for the pending conflict. Out-of-range decisions are a configuration
// error; nothing is resolved silently in their place.
func (s *Session) Decide(action Action) error {
	if s.pending == nil {
		return fmt.Errorf("merge: no pending conflict to decide")
	}
	conflict := s.pending
	if err := validateAction(conflict, action); err != nil {
		return err
	}
	s.pending = nil
	return s.apply(s.plan[s.pos], action, false)
}

// apply resolves one conflicting entry with a validated action, places the
// surviving node and appends to the resolution log.
func (s *Session) apply(e *planEntry, action Action, fellBack bool) error {
	if err := validateAction(e.conflict, action); err != nil {
		return err
	}

	var winner int
	switch action {
	case ActionKeepFirst:
		winner = 0
		s.builder.placeCandidate(e, 0)
	case ActionKeepLast:
		winner = len(e.candidates) - 1
		s.builder.placeCandidate(e, winner)
	case ActionMergeAttributes:
		winner = len(e.candidates) - 1
		s.builder.placeSynthesized(e)
	}

	if e.conflict.Kind == KindTypeMismatch {
		s.diagnostics = append(s.diagnostics, Diagnostic{
			Severity: SeverityCritical,
			Code:     CodeTypeMismatch,
			Message:  fmt.Sprintf("type mismatch at %s resolved by %s", e.path, action),
			Path:     e.path,
			Source:   e.candidates[winner].Source,
		})
	}

	s.resolutions = append(s.resolutions, Resolution{
		Path:     e.path,
		Kind:     e.conflict.Kind,
		Strategy: s.opts.strategy(),
		Action:   action,
		Source:   e.candidates[winner].Source,
		Fallback: fellBack,
	})
	s.pos++
	return nil
}

// Finish validates the merged tree and seals the result: reference rewrite
// and resolvability, exhaustive short-name uniqueness, then the optional
// external validation hook. The tree is immutable once returned.
func (s *Session) Finish(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pending != nil || s.pos < len(s.plan) {
		return nil, fmt.Errorf("merge: session has unresolved work; call Next until it returns no conflict")
	}
	if s.finished {
		return nil, fmt.Errorf("merge: session already finished")
	}
	s.finished = true

	doc := s.builder.finish()

	// Uniqueness first: a violation here is a planner defect and fatal.
	if err := checkUniqueness(doc); err != nil {
		return nil, err
	}

	idx, err := arxml.BuildIndex(doc)
	if err != nil {
		// Same invariant seen from the index side.
		if dup, ok := err.(*arxml.DuplicatePathError); ok {
			return nil, &InternalConsistencyError{Path: dup.Path, Tag: dup.Tag}
		}
		return nil, err
	}

	refs := arxml.ScanReferences(doc, s.opts.ReferencePatterns)
	refs.Rewrite(nil) // paths are stable under a path-keyed merge; kept for future rename rules
	unresolved := refs.Resolve(idx)
	for _, e := range unresolved {
		s.diagnostics = append(s.diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDanglingReference,
			Message:  fmt.Sprintf("dangling reference %s -> %s (%s)", e.Owner, e.Target, e.Element),
			Path:     e.Target,
			Source:   -1,
		})
	}

	if s.opts.Hook != nil {
		s.diagnostics = append(s.diagnostics, s.opts.Hook(doc)...)
	}

	return &Result{
		Document:       doc,
		Index:          idx,
		References:     refs,
		Resolutions:    s.resolutions,
		Diagnostics:    s.diagnostics,
		MergedInputs:   len(s.sources),
		SkippedInputs:  s.skipped,
		UnresolvedRefs: len(unresolved),
	}, nil
}

// Pending returns the conflict awaiting a decision, or nil.
func (s *Session) Pending() *Conflict { return s.pending }

func inputName(in Input) string {
	if in.Name != "" {
		return in.Name
	}
	return "unnamed document"
}
