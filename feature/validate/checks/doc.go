// Package checks implements the individual ARXML structure checks.
package checks
