package utils

import (
	"strconv"
	"strings"
)

// TextToInt parses an XML text value as an integer. Surrounding whitespace is
// tolerated and a malformed value yields the fallback, since numeric leaf
// elements in hand-edited documents are frequently padded or empty.
func TextToInt(text string, fallback int) int {
	s := strings.TrimSpace(text)
	if s == "" {
		return fallback
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		// Some tools emit numeric values in float form ("8.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fallback
		}
		return int(f)
	}
	return i
}

// TextToBool parses an XML boolean text value. AUTOSAR schemas accept both
// "true"/"false" and "1"/"0".
func TextToBool(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	return s == "1" || s == "true"
}

// SanitizeFileName strips path separators and leading dots from an uploaded
// file name so it is safe to use as an object key or on-disk name.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "unnamed.arxml"
	}
	return name
}
