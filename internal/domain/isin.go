package domain

import (
	"regexp"
	"strings"
)

// isinPattern is the structural shape of an ISIN: a two-letter country code,
// nine alphanumeric characters and a trailing check digit. The check digit
// arithmetic is intentionally not verified; upstream sources reject bad
// checksums themselves and a format gate is enough to avoid pointless I/O.
var isinPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// IsValidISIN reports whether code looks like an ISIN after uppercasing.
// An empty string is invalid.
func IsValidISIN(code string) bool {
	if code == "" {
		return false
	}
	return isinPattern.MatchString(strings.ToUpper(code))
}
