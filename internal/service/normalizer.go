package service

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeEmail trims the provided email. Case is preserved because the
// processor stores the address as given.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// normalizeID trims an opaque processor identifier.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}
