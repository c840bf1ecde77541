package sanitization

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespace = regexp.MustCompile(`\s+`)

// stripControl drops non-printable runes such as NUL or escape sequences
func stripControl(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
}

// SanitizeName collapses runs of whitespace and trims the ends.
// Output escaping is left to html/template.
func SanitizeName(input string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(stripControl(input), " "))
}

// SanitizeEmail trims an email address submitted from a form
func SanitizeEmail(input string) string {
	return strings.TrimSpace(stripControl(input))
}
