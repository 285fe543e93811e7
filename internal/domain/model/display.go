package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName renders a domain identifier for people, e.g. social_anxiety
// becomes "Social Anxiety". An empty domain renders as "General".
func DisplayName(domain string) string {
	d := strings.TrimSpace(strings.ReplaceAll(domain, "_", " "))
	if d == "" {
		return "General"
	}
	return cases.Title(language.English).String(d)
}
