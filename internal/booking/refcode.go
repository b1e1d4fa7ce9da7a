package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Reference codes look like NS-20260828-003: prefix, booking date, and a
// zero-padded sequence unique per prefix+date. They are human-readable and
// get embedded in bank transfer descriptions for reconciliation.

// FormatRefCode builds the code for the n-th booking (1-based) on a date.
func FormatRefCode(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, date.UTC().Format("20060102"), seq)
}

// RefCodePattern compiles the extraction pattern for a prefix. Bank
// descriptions are free text, so the code is matched anywhere in it,
// case-insensitively.
func RefCodePattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(prefix) + `-\d{8}-\d{3,})`)
}

// ExtractRefCode pulls the first reference code out of free text.
// Returns "" when no code is present. Codes are stored upper-case,
// so the match is normalized regardless of how the bank mangled it.
func ExtractRefCode(pattern *regexp.Regexp, text string) string {
	match := pattern.FindString(text)
	if match == "" {
		return ""
	}
	return strings.ToUpper(match)
}
