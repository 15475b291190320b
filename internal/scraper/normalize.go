package scraper

import "strings"

// NormalizeURL turns a raw domain into an absolute URL by prepending
// "https://" unless it already starts with "http". No validation is done;
// malformed input surfaces later as a network failure.
func NormalizeURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if strings.HasPrefix(domain, "http") {
		return domain
	}
	return "https://" + domain
}
