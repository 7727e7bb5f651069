package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName folds a company name down to a form that survives the
// registry's inconsistent casing and spacing.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// NormalizeRegistrationNumber uppercases and strips whitespace, since
// numbers like "SC 123456" and "sc123456" refer to the same company.
func NormalizeRegistrationNumber(number string) string {
	number = strings.ToUpper(number)
	return whitespaceRegex.ReplaceAllString(number, "")
}
