// Package arxml provides the in-memory document model for AUTOSAR ARXML files.
//
// It covers parsing already-decoded ARXML text into an ordered element tree,
// deterministic serialization back to text, short-name path indexing, and
// cross-reference extraction.
//
// # Document Model
//
// A Node represents one XML element: local tag name, ordered attributes,
// ordered children and text content. Namespace prefixes are stripped during
// parsing; the root element keeps its namespace declarations so a merged
// document serializes back as valid AUTOSAR XML.
//
// # Paths
//
// Named elements (those carrying a SHORT-NAME child) are addressed by
// hierarchical paths such as /Pkg/SubPkg/Signal. Anonymous elements (wrappers
// like AR-PACKAGES or ELEMENTS, and plain content) contribute no path segment.
// BuildIndex produces the per-document Path -> Node lookup table used by the
// merge planner.
//
// # References
//
// ARXML elements point at each other by path, through reference elements
// (tags ending in -REF by convention) and reference attributes. ScanReferences
// collects these as name-based handles so targets can be rewritten and
// validated after a merge without holding direct node pointers.
package arxml
