package validate

import (
	"arxml-merger/core/arxml"
	"arxml-merger/core/merge"
	"arxml-merger/feature/validate/checks"

	"go.uber.org/zap"
)

// FileResult is the validation outcome for one document.
type FileResult struct {
	Name         string             `json:"name"`
	Valid        bool               `json:"valid"`
	Version      string             `json:"autosar_version,omitempty"`
	ElementCount int                `json:"element_count"`
	Issues       []merge.Diagnostic `json:"issues"`
}

// Service validates ARXML documents before or after merging.
type Service struct {
	patterns []string
	logger   *zap.Logger
}

// NewService creates a validation service. patterns overrides the reference
// suffixes scanned for dangling targets; nil means the defaults.
func NewService(patterns []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{patterns: patterns, logger: logger}
}

// ValidateText parses and validates a single document. A parse failure is
// itself a critical diagnostic, not an error return, so callers can validate
// a batch and render all outcomes uniformly.
func (s *Service) ValidateText(name, text string) *FileResult {
	res := &FileResult{Name: name}

	root, err := arxml.Parse(text)
	if err != nil {
		res.Issues = append(res.Issues, merge.Diagnostic{
			Severity: merge.SeverityCritical,
			Code:     merge.CodeParseError,
			Message:  err.Error(),
			Source:   -1,
		})
		return res
	}

	res.Version = checks.Version(root)
	res.ElementCount = countElements(root)
	res.Issues = append(res.Issues, checks.CheckStructure(root)...)
	res.Issues = append(res.Issues, checks.CheckReferences(root, s.patterns)...)
	res.Valid = checks.Valid(res.Issues)

	s.logger.Debug("Validated document",
		zap.String("file", name),
		zap.Bool("valid", res.Valid),
		zap.Int("issues", len(res.Issues)))

	return res
}

// Hook adapts the structural checks into a merge validation hook, so merged
// output is vetted by the same rules as standalone input files. Reference
// resolution is omitted here; the merge engine already reports dangling
// references itself.
func (s *Service) Hook() merge.ValidationHook {
	return func(root *arxml.Node) []merge.Diagnostic {
		return checks.CheckStructure(root)
	}
}

func countElements(n *arxml.Node) int {
	count := 1
	for _, c := range n.Children {
		count += countElements(c)
	}
	return count
}
