package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength matches the size of the client and service columns.
const MaxNameLength = 100

// CleanName trims s and collapses inner runs of whitespace to one space.
func CleanName(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// FitsColumn reports whether s is at most max characters long.
func FitsColumn(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}
