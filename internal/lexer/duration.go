package lexer

import "regexp"

// isoDurationPattern recognizes PnYnMnDTnHnMnS (at least one component).
var isoDurationPattern = regexp.MustCompile(`^P(?:\d+(?:\.\d+)?[YMWD])*(?:T(?:\d+(?:\.\d+)?[HMS])*)?`)

// colloquialDurationPattern recognizes "<number><unit>" where unit is a
// full unit name (singular or plural) or one of the short forms min, h,
// d, w, mo, q, y. Other abbreviations (such as "sec" or "s") are not
// recognized.
var colloquialDurationPattern = regexp.MustCompile(`^\d+(?:\.\d+)?(seconds?|minutes?|min|hours?|h|days?|d|weeks?|w|months?|mo|quarters?|q|years?|y)\b`)

func (l *Lexer) tryDuration() (Token, bool) {
	rest := l.c.remainder()

	if loc := isoDurationPattern.FindStringIndex(rest); loc != nil && loc[1] > 1 && rest[:loc[1]] != "PT" {
		candidate := rest[:loc[1]]
		if loc[1] >= len(rest) || isBoundary(rune(candidate[len(candidate)-1]), rune(rest[loc[1]])) {
			l.c.restoreTo(l.c.cursorPos() + loc[1])
			return Token{Text: candidate, Kind: KindDuration}, true
		}
	}

	if loc := colloquialDurationPattern.FindStringIndex(rest); loc != nil {
		candidate := rest[:loc[1]]
		l.c.restoreTo(l.c.cursorPos() + loc[1])
		return Token{Text: candidate, Kind: KindDuration}, true
	}

	return Token{}, false
}
