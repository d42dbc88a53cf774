package checks

import (
	"fmt"
	"regexp"
	"strings"

	"arxml-merger/core/arxml"
	"arxml-merger/core/merge"
)

// KnownVersions lists the AUTOSAR schema versions the toolchain has been
// used with. Documents from other versions still merge; they just get a
// warning.
var KnownVersions = map[string]bool{
	"4.0.1": true, "4.0.2": true, "4.0.3": true,
	"4.1.1": true, "4.1.2": true, "4.1.3": true,
	"4.2.1": true, "4.2.2": true,
	"4.3.0": true, "4.3.1": true,
	"4.4.0": true, "4.5.0": true,
}

var shortNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Schema locations carry the version either dotted (AUTOSAR_4.3.1) or
// dashed (AUTOSAR_4-3-1).
var versionPattern = regexp.MustCompile(`AUTOSAR_(\d+[.-]\d+[.-]\d+)`)

// CheckStructure runs all structural checks on a parsed tree and returns the
// collected diagnostics. A document is considered valid when nothing of
// severity error or critical was found.
func CheckStructure(root *arxml.Node) []merge.Diagnostic {
	var issues []merge.Diagnostic

	issues = append(issues, checkRoot(root)...)
	issues = append(issues, checkVersion(root)...)
	issues = append(issues, checkPackages(root)...)
	issues = append(issues, checkShortNames(root, "")...)

	return issues
}

// CheckReferences resolves every reference in the tree against its own path
// index and reports each dangling target as a warning.
func CheckReferences(root *arxml.Node, patterns []string) []merge.Diagnostic {
	idx, err := arxml.BuildIndex(root)
	if err != nil {
		// Duplicate paths are reported by checkShortNames already.
		return nil
	}

	var issues []merge.Diagnostic
	refs := arxml.ScanReferences(root, patterns)
	for _, entry := range refs.Resolve(idx) {
		issues = append(issues, merge.Diagnostic{
			Severity: merge.SeverityWarning,
			Code:     merge.CodeDanglingReference,
			Message:  fmt.Sprintf("unresolved reference %s in %s", entry.Target, entry.Element),
			Path:     entry.Owner,
			Source:   -1,
		})
	}
	return issues
}

// Valid reports whether a diagnostic list contains nothing of severity error
// or critical.
func Valid(issues []merge.Diagnostic) bool {
	for _, issue := range issues {
		if issue.Severity == merge.SeverityError || issue.Severity == merge.SeverityCritical {
			return false
		}
	}
	return true
}

// Version extracts the AUTOSAR schema version from the root element's
// xsi:schemaLocation attribute, or "" when none is declared.
func Version(root *arxml.Node) string {
	loc, ok := root.Attr("xsi:schemaLocation")
	if !ok {
		return ""
	}
	m := versionPattern.FindStringSubmatch(loc)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "-", ".")
}

func checkRoot(root *arxml.Node) []merge.Diagnostic {
	if root.Tag == arxml.RootTag {
		return nil
	}
	return []merge.Diagnostic{{
		Severity: merge.SeverityCritical,
		Code:     merge.CodeValidation,
		Message:  fmt.Sprintf("invalid root element %s, expected %s", root.Tag, arxml.RootTag),
		Path:     "/",
		Source:   -1,
	}}
}

func checkVersion(root *arxml.Node) []merge.Diagnostic {
	version := Version(root)
	if version == "" || KnownVersions[version] {
		return nil
	}
	return []merge.Diagnostic{{
		Severity: merge.SeverityWarning,
		Code:     merge.CodeValidation,
		Message:  fmt.Sprintf("unknown AUTOSAR version %s", version),
		Path:     "/",
		Source:   -1,
	}}
}

func checkPackages(root *arxml.Node) []merge.Diagnostic {
	if root.Tag != arxml.RootTag {
		return nil
	}
	if root.Child("AR-PACKAGES") != nil {
		return nil
	}
	return []merge.Diagnostic{{
		Severity: merge.SeverityError,
		Code:     merge.CodeValidation,
		Message:  "no AR-PACKAGES found",
		Path:     "/",
		Source:   -1,
	}}
}

// checkShortNames walks the tree and reports named elements with a malformed
// short name, plus siblings that share tag and short name within one scope.
func checkShortNames(n *arxml.Node, parent arxml.Path) []merge.Diagnostic {
	var issues []merge.Diagnostic

	seen := map[string]bool{}
	for _, c := range n.Children {
		name := c.ShortName()
		if name == "" {
			if c.Tag == "AR-PACKAGE" {
				issues = append(issues, merge.Diagnostic{
					Severity: merge.SeverityError,
					Code:     merge.CodeValidation,
					Message:  "AR-PACKAGE without SHORT-NAME",
					Path:     parent,
					Source:   -1,
				})
			}
			issues = append(issues, checkShortNames(c, parent)...)
			continue
		}

		path := parent.Join(name)

		if !shortNamePattern.MatchString(name) {
			issues = append(issues, merge.Diagnostic{
				Severity: merge.SeverityWarning,
				Code:     merge.CodeValidation,
				Message:  fmt.Sprintf("invalid SHORT-NAME %q", name),
				Path:     path,
				Source:   -1,
			})
		}

		key := c.Tag + "\x00" + name
		if seen[key] {
			issues = append(issues, merge.Diagnostic{
				Severity: merge.SeverityError,
				Code:     merge.CodeValidation,
				Message:  fmt.Sprintf("duplicate SHORT-NAME %s in the same scope", name),
				Path:     path,
				Source:   -1,
			})
		}
		seen[key] = true

		issues = append(issues, checkShortNames(c, path)...)
	}

	return issues
}
