// Package contact finds email addresses and phone numbers in plain text.
package contact

import (
	"regexp"
	"slices"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// phonePattern is loose: a run of digits, spaces and hyphens ending in a
	// digit, with an optional leading '+'. The first group may be a
	// parenthesized area code. Postal codes and long IDs may match too.
	phonePattern = regexp.MustCompile(`\+?(?:\(\d+\)|\d)[\d -]{8,}\d`)
)

// Separator joins matches in an output field.
const Separator = ", "

// Contacts holds the deduplicated matches found in one page, each list
// sorted lexicographically.
type Contacts struct {
	Emails []string
	Phones []string
}

// Extract scans text for emails and phone numbers.
func Extract(text string) Contacts {
	return Contacts{
		Emails: Emails(text),
		Phones: Phones(text),
	}
}

// Emails returns the distinct email addresses in text. Case is preserved and
// addresses differing only in case are kept apart.
func Emails(text string) []string {
	return unique(emailPattern.FindAllString(text, -1))
}

// Phones returns the distinct phone-like digit runs in text.
func Phones(text string) []string {
	return unique(phonePattern.FindAllString(text, -1))
}

// Join renders matches as one field, or empty when there are none.
func Join(matches []string, empty string) string {
	if len(matches) == 0 {
		return empty
	}
	return strings.Join(matches, Separator)
}

func unique(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}
	slices.Sort(matches)
	return slices.Compact(matches)
}
