// Package report generates merge reports and signal inventories.
//
// A MergeReport captures one merge run end to end: which files went in, which
// strategy resolved conflicts, the resolution log, every diagnostic, and an
// inventory of the signals and port interfaces present in the merged tree.
//
// Reports render to JSON for tooling, CSV for spreadsheet review of the
// signal inventory and conflict log, and a self-contained HTML page for
// humans.
package report
