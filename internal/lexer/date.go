package lexer

import "regexp"

// isoDatePattern recognizes the absolute ISO-8601 forms from spec §4.T:
// basic/extended forms, ordinal-year form, and ISO week form. It is
// intentionally permissive about validity (leap years, day ranges) --
// that is the Temporal component's job; the lexer only needs to claim
// the span as a single Date token so the Pair rule doesn't split it on
// its embedded colons.
var isoDatePattern = regexp.MustCompile(
	`^(?:` +
		`\d{8}T\d{6}Z` + // YYYYMMDDThhmmssZ
		`|\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:Z|[+-]\d{2}(?::?\d{2})?)?` + // extended with offset
		`|\d{4}-\d{2}-\d{2}` + // YYYY-MM-DD
		`|\d{8}` + // YYYYMMDD -- only a date when not already an epoch-length run
		`|\d{4}-\d{3}` + // ordinal year YYYY-DDD
		`|\d{4}-W\d{2}(?:-\d)?` + // ISO week
		`)`,
)

var epochPattern = regexp.MustCompile(`^\d{9,10}$`)

func (l *Lexer) tryDate() (Token, bool) {
	rest := l.c.remainder()

	if loc := isoDatePattern.FindStringIndex(rest); loc != nil && loc[0] == 0 {
		candidate := rest[:loc[1]]
		// Require a boundary after the match so "2024-01-01x" isn't
		// truncated into a date plus a stray identifier.
		if loc[1] >= len(rest) || isBoundary(rune(candidate[len(candidate)-1]), rune(rest[loc[1]])) {
			l.c.restoreTo(l.c.cursorPos() + loc[1])
			return Token{Text: candidate, Kind: KindDate}, true
		}
	}

	// Bare epoch literal: a run of 9-10 digits not followed by a digit.
	digitsEnd := 0
	for digitsEnd < len(rest) && isDigit(rune(rest[digitsEnd])) {
		digitsEnd++
	}
	if digitsEnd == 9 || digitsEnd == 10 {
		if digitsEnd >= len(rest) || !isDigit(rune(rest[digitsEnd])) {
			if epochPattern.MatchString(rest[:digitsEnd]) {
				l.c.restoreTo(l.c.cursorPos() + digitsEnd)
				return Token{Text: rest[:digitsEnd], Kind: KindDate}, true
			}
		}
	}

	return Token{}, false
}
