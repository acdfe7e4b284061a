package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// PartialSimilarity scores how well the shorter of a and b matches its best
// aligned window inside the longer one, on a 0-100 scale. Comparison is
// case-insensitive and rune based. Either string empty scores 0.
//
// Each window is compared with a difflib SequenceMatcher ratio
// (2*matches / total length over the longest matching blocks).
func PartialSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra := splitRunes(strings.ToLower(a))
	rb := splitRunes(strings.ToLower(b))
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	m := difflib.NewMatcher(ra, nil)
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		m.SetSeq2(rb[i : i+len(ra)])
		if r := m.Ratio(); r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return best * 100
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ContainsWholeWord reports whether needle occurs in haystack without a
// letter or digit directly before or after it. Both are compared as given;
// callers lower-case first.
func ContainsWholeWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for offset := 0; offset <= len(haystack)-len(needle); {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(needle)
		if !isWordRune(lastRune(haystack[:start])) && !isWordRune(firstRune(haystack[end:])) {
			return true
		}
		_, width := utf8.DecodeRuneInString(haystack[start:])
		offset = start + width
	}
	return false
}

func isWordRune(r rune) bool {
	return r != 0 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
