package schedule

import (
	"strings"
	"unicode"
)

// NormalizeTitle reduces a raw title to its lookup key: trim whitespace,
// strip one leading and one trailing double-quote if present, trim again,
// lower-case. The result is used only for joins and equality checks,
// never for display.
func NormalizeTitle(raw string) string {
	s := stripQuotes(strings.TrimSpace(raw))
	return strings.ToLower(strings.TrimSpace(s))
}

// stripQuotes removes at most one leading and one trailing double-quote.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// FormatTitle produces the display form of a title: quotes stripped, then
// each whitespace-delimited token title-cased. Title-casing a token means
// upper-casing its first alphabetic rune and lower-casing the rest, while
// leading digits and punctuation pass through verbatim. Tokens with no
// alphabetic rune are left untouched.
func FormatTitle(raw string) string {
	s := stripQuotes(strings.TrimSpace(raw))
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		tokens[i] = titleCaseToken(tok)
	}
	return strings.Join(tokens, " ")
}

func titleCaseToken(tok string) string {
	for i, r := range tok {
		if unicode.IsLetter(r) {
			head := tok[:i]
			rest := tok[i+len(string(r)):]
			return head + string(unicode.ToUpper(r)) + strings.ToLower(rest)
		}
	}
	return tok
}

// Exclusions is the deny-list of placeholder listings that must never
// become calendar events, matched on normalized titles.
type Exclusions struct {
	titles map[string]struct{}
}

// NewExclusions builds an exclusion set from raw titles.
func NewExclusions(titles []string) *Exclusions {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[NormalizeTitle(t)] = struct{}{}
	}
	return &Exclusions{titles: set}
}

// IsExcluded reports whether a raw title is on the deny-list.
func (x *Exclusions) IsExcluded(raw string) bool {
	if x == nil {
		return false
	}
	_, ok := x.titles[NormalizeTitle(raw)]
	return ok
}
