package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold reduces a raw surface form to its comparison key: diacritics
// stripped, lower-cased, punctuation removed, whitespace collapsed.
// "São Paulo" and "sao  paulo." fold to the same key.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(foldTransformer, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case r == '+' || r == '#':
			// keep: "c++", "c#" and "k8s"-style names lose meaning without them
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits a folded string into its word set, deduplicated.
func Tokens(s string) []string {
	fields := strings.Fields(Fold(s))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// CompanyKey is the normalized-name key companies dedupe on. Legal suffixes
// are dropped so "Acme Corp." and "ACME CORP" share one key.
func CompanyKey(name string) string {
	folded := Fold(name)
	if folded == "" {
		return ""
	}
	fields := strings.Fields(folded)
	for len(fields) > 1 {
		last := fields[len(fields)-1]
		if _, ok := companySuffixes[last]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

var companySuffixes = map[string]struct{}{
	"inc": {}, "incorporated": {}, "corp": {}, "corporation": {},
	"ltd": {}, "limited": {}, "llc": {}, "gmbh": {}, "co": {},
	"company": {}, "plc": {}, "sa": {}, "bv": {}, "pte": {}, "pty": {},
}
