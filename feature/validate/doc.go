// Package validate checks ARXML documents for structural problems.
//
// The checks cover the AUTOSAR basics: a correct root element, a declared
// schema version the toolchain knows, the presence of AR-PACKAGES, well
// formed and scope-unique short names, and resolvable references.
//
// The same checks plug into the merge engine as a validation hook, so the
// merged output is vetted by the rules its inputs were vetted by.
package validate
