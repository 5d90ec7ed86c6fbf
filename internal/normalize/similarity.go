package normalize

import "strings"

// Levenshtein returns the edit distance between two strings, by rune.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// EditRatio maps edit distance onto [0,1]: 1 means equal.
func EditRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longer := la
	if lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longer)
}

// TokenJaccard is |A∩B| / |A∪B| over folded word sets.
func TokenJaccard(a, b string) float64 {
	ta := Tokens(a)
	tb := Tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}
	inter := 0
	for _, t := range tb {
		if _, ok := set[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// TokenPrefixRatio matches token sets where one side abbreviates the
// other: "data eng" against "data engineer" scores 1 because every token
// pairs with an equal token or one it prefixes (3+ runes, so "e" does not
// claim "engineer").
func TokenPrefixRatio(a, b string) float64 {
	ta := Tokens(a)
	tb := Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	used := make([]bool, len(tb))
	matches := 0
	for _, x := range ta {
		for j, y := range tb {
			if used[j] {
				continue
			}
			if tokenAbbreviates(x, y) || tokenAbbreviates(y, x) {
				used[j] = true
				matches++
				break
			}
		}
	}
	return 2 * float64(matches) / float64(len(ta)+len(tb))
}

func tokenAbbreviates(short, long string) bool {
	if short == long {
		return true
	}
	return len(short) >= 3 && len(short) < len(long) && strings.HasPrefix(long, short)
}

// isAcronymOf reports whether a spells the initials of b's tokens, the
// "ml" → "machine learning" case.
func isAcronymOf(a, b string) bool {
	tb := Tokens(b)
	if len(tb) < 2 || len(a) != len(tb) {
		return false
	}
	for i, t := range tb {
		if rune(t[0]) != rune(a[i]) {
			return false
		}
	}
	return true
}

// Similarity scores two surface forms. Short forms (acronyms, single
// tokens) lean on edit distance; longer phrases lean on token overlap and
// abbreviation pairing, so word order, filler words and clipped tokens do
// not mask a match.
func Similarity(a, b string) float64 {
	a = Fold(a)
	b = Fold(b)
	if a == b {
		return 1
	}
	if isAcronymOf(a, b) || isAcronymOf(b, a) {
		return 1
	}
	best := EditRatio(a, b)
	if tj := TokenJaccard(a, b); tj > best {
		best = tj
	}
	if tp := TokenPrefixRatio(a, b); tp > best {
		best = tp
	}
	return best
}
