// Package util holds input normalization shared by the services.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Runs of anything a DNS label cannot hold.
	nonLabelRe = regexp.MustCompile(`[^a-z0-9]+`)
	// Runs of anything a URL path slug should not hold.
	nonSlugRe = regexp.MustCompile(`[^a-z0-9._~]+`)
)

// NormalizeSubdomain converts user input into a DNS-safe label: accents
// folded, lowercased, with every run of other characters collapsed to a
// single dash and no leading or trailing dash.
//
//	"My Community" → "my-community"
//	"dev_team!!"   → "dev-team"
//	"--Déjà vu--"  → "deja-vu"
func NormalizeSubdomain(input string) string {
	s := foldASCII(strings.TrimSpace(input))
	s = nonLabelRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// NormalizeSlug converts user input into an event URL slug. It follows the
// same rules as NormalizeSubdomain but keeps the unreserved URL characters
// ".", "_" and "~".
//
//	"Launch Party 2025" → "launch-party-2025"
//	"v1.2 release"      → "v1.2-release"
func NormalizeSlug(input string) string {
	s := foldASCII(strings.TrimSpace(input))
	s = nonSlugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// foldASCII decomposes accented characters and drops whatever is not ASCII.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(s))
}
