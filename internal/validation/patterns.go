package validation

import (
	"regexp"
	"sort"
)

// Named patterns usable from schemas via `pattern: <name>`.
var namedPatterns = map[string]*regexp.Regexp{
	"postalCode": regexp.MustCompile(`^\d{5}$`),
	"phone":      regexp.MustCompile(`^(\+358|0)[\d\s-]{6,14}$`),
	"email":      regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`),
	"namesOnly":  regexp.MustCompile(`^[\p{L}\s'’-]+$`),
	"businessId": regexp.MustCompile(`^\d{7}-\d$`),
	"personalId": regexp.MustCompile(`^\d{6}[-+A-FU-Y]\d{3}[0-9A-Y]$`),
	"iban":       regexp.MustCompile(`^FI\d{2}\s?(\d{4}\s?){3}\d{2}$`),
	"numeric":    regexp.MustCompile(`^-?[\d\s\x{00a0}]+(,\d+)?$`),
}

// PatternNames returns the names a schema may reference, sorted.
func PatternNames() []string {
	names := make([]string, 0, len(namedPatterns))
	for n := range namedPatterns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
