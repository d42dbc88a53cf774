// Package utils provides common utility functions for the arxml-merger application.
// It includes helper functions for parsing XML text values, file name sanitizing,
// and other shared logic that doesn't fit into domain-specific packages.
package utils
