// Package lexer tokenizes a raw argument string into the typed tokens
// consumed by the argument pipeline and expression engine: strings,
// numbers, UUIDs, dates, durations and operators, chosen by
// longest-plausible match with the fixed precedence described in spec
// §4.L.
//
// The scanning primitives are adapted from gotas/pkg/task/parser.Pig,
// itself a port of the original taskwarrior Pig/Nibbler scanner.
package lexer

import (
	"strings"

	"github.com/szaffarano/gotask/internal/errs"
)

// Lexer produces a lazy sequence of tokens from a single input string.
type Lexer struct {
	c *cursor
}

func New(input string) *Lexer {
	return &Lexer{c: newCursor(input)}
}

// Next returns the next token, or ok=false at end of input. A non-nil
// error is a LexError: unterminated string, invalid escape or invalid
// codepoint (spec §7).
func (l *Lexer) Next() (Token, bool, error) {
	l.c.skipWhile(isWhitespace)
	if l.c.eos() {
		return Token{}, false, nil
	}

	start := l.c.cursorPos()

	if tok, ok, err := l.tryQuotedString(); ok || err != nil {
		return tok, ok, err
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryUUID(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryDate(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryDuration(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryHex(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryNumber(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.trySeparator(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryListSep(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryPair(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryTag(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.trySubstitution(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryPattern(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryOperator(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	if tok, ok := l.tryIdentifier(); ok {
		return tok, true, nil
	}
	l.c.restoreTo(start)

	return l.tryWord()
}

// All drains the lexer into a slice; convenience for callers that don't
// need the lazy interface.
func All(input string) ([]Token, error) {
	l := New(input)
	var toks []Token
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) tryQuotedString() (Token, bool, error) {
	quote := l.c.peek()
	if quote != '\'' && quote != '"' {
		return Token{}, false, nil
	}
	start := l.c.cursorPos()
	l.c.advance()

	var b strings.Builder
	for {
		if l.c.eos() {
			return Token{}, false, errs.LexError(l.c.value[start:], nil, "unterminated string starting at %d", start)
		}
		r := l.c.peek()
		if r == quote {
			l.c.advance()
			return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindString}, true, nil
		}
		if r == '\\' {
			l.c.advance()
			if l.c.peek() == 'U' && l.c.runeAfter(1) == '+' {
				l.c.advance()
				l.c.advance()
				cp, ok := decodeCodepoint(l.c, 4)
				if !ok {
					return Token{}, false, errs.LexError(l.c.value[start:], nil, "invalid U+XXXX codepoint escape")
				}
				b.WriteRune(cp)
				continue
			}
			decoded, ok := decodeEscape(l.c)
			if !ok {
				return Token{}, false, errs.LexError(l.c.value[start:], nil, "invalid escape sequence at %d", l.c.cursorPos())
			}
			b.WriteRune(decoded)
			continue
		}
		if !l.c.eos() && r == 0xFFFD {
			return Token{}, false, errs.LexError(l.c.value[start:], nil, "invalid codepoint in string")
		}
		b.WriteRune(r)
		l.c.advance()
	}
}

func isUUIDByteLayout(s string) bool {
	// 8-4-4-4-12 canonical hex layout.
	layout := []int{8, 4, 4, 4, 12}
	pos := 0
	for gi, glen := range layout {
		if gi > 0 {
			if pos >= len(s) || s[pos] != '-' {
				return false
			}
			pos++
		}
		for i := 0; i < glen; i++ {
			if pos >= len(s) {
				return false
			}
			c := rune(s[pos])
			if !isHexDigit(c) {
				return false
			}
			pos++
		}
	}
	return pos == len(s)
}

func isPartialUUIDLayout(s string) bool {
	if len(s) < 8 || len(s) > 35 {
		return false
	}
	layout := []int{8, 4, 4, 4, 12}
	pos := 0
	for gi, glen := range layout {
		if gi > 0 {
			if pos >= len(s) {
				return true
			}
			if s[pos] != '-' {
				return false
			}
			pos++
		}
		for i := 0; i < glen; i++ {
			if pos >= len(s) {
				return true
			}
			c := rune(s[pos])
			if !isHexDigit(c) {
				return false
			}
			pos++
		}
	}
	return pos == len(s)
}

func (l *Lexer) tryUUID() (Token, bool) {
	start := l.c.cursorPos()
	end := start
	for end < len(l.c.value) && isUUIDRune(rune(l.c.value[end])) {
		end++
	}
	candidate := l.c.value[start:end]
	if len(candidate) == 36 && isUUIDByteLayout(candidate) {
		l.c.restoreTo(end)
		return Token{Text: candidate, Kind: KindUUID}, true
	}
	// Partial UUID: prefix of 8-35 chars, must not extend to a full 36+ run
	// (so "8-4-4-4-12" with extra trailing hex is not silently truncated).
	if len(candidate) >= 8 && len(candidate) <= 35 && isPartialUUIDLayout(candidate) {
		l.c.restoreTo(end)
		return Token{Text: candidate, Kind: KindUUID}, true
	}
	return Token{}, false
}

func isUUIDRune(r rune) bool {
	return isHexDigit(r) || r == '-'
}

func (l *Lexer) tryHex() (Token, bool) {
	if l.c.peek() != '0' {
		return Token{}, false
	}
	start := l.c.cursorPos()
	l.c.advance()
	if l.c.peek() != 'x' && l.c.peek() != 'X' {
		l.c.restoreTo(start)
		return Token{}, false
	}
	l.c.advance()
	digitsStart := l.c.cursorPos()
	l.c.skipWhile(isHexDigit)
	if l.c.cursorPos() == digitsStart {
		l.c.restoreTo(start)
		return Token{}, false // "0x" with no digits is not a hex number.
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindHex}, true
}

func (l *Lexer) tryNumber() (Token, bool) {
	start := l.c.cursorPos()
	if l.c.peek() == '+' || l.c.peek() == '-' {
		l.c.advance()
	}
	digitsStart := l.c.cursorPos()
	l.c.skipWhile(isDigit)
	if l.c.cursorPos() == digitsStart {
		l.c.restoreTo(start)
		return Token{}, false
	}
	if l.c.peek() == '.' {
		save := l.c.cursorPos()
		l.c.advance()
		fracStart := l.c.cursorPos()
		l.c.skipWhile(isDigit)
		if l.c.cursorPos() == fracStart {
			l.c.restoreTo(save)
		}
	}
	if l.c.peek() == 'e' || l.c.peek() == 'E' {
		save := l.c.cursorPos()
		l.c.advance()
		if l.c.peek() == '+' || l.c.peek() == '-' {
			l.c.advance()
		}
		expStart := l.c.cursorPos()
		l.c.skipWhile(isDigit)
		if l.c.cursorPos() == expStart {
			l.c.restoreTo(save)
		}
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindNumber}, true
}

func (l *Lexer) trySeparator() (Token, bool) {
	if strings.HasPrefix(l.c.remainder(), "--") {
		after := l.c.runeAfter(2)
		if isWhitespace(after) || l.c.cursorPos()+2 == len(l.c.value) {
			l.c.restoreTo(l.c.cursorPos() + 2)
			return Token{Text: "--", Kind: KindSeparator}, true
		}
	}
	return Token{}, false
}

func (l *Lexer) tryListSep() (Token, bool) {
	if l.c.peek() == ',' {
		start := l.c.cursorPos()
		l.c.advance()
		return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindListSep}, true
	}
	return Token{}, false
}

// tryPair matches identifier (':'|'=') (string|word|empty).
func (l *Lexer) tryPair() (Token, bool) {
	start := l.c.cursorPos()
	nameEnd := l.c.cursorPos()
	for nameEnd < len(l.c.value) {
		r := rune(l.c.value[nameEnd])
		if r == ':' || r == '=' || isWhitespace(r) {
			break
		}
		nameEnd++
	}
	if nameEnd == start {
		return Token{}, false
	}
	name := l.c.value[start:nameEnd]
	if name == "" || isDigit(rune(name[0])) {
		return Token{}, false
	}
	if nameEnd >= len(l.c.value) {
		return Token{}, false
	}
	sep := rune(l.c.value[nameEnd])
	if sep != ':' && sep != '=' {
		return Token{}, false
	}

	l.c.restoreTo(nameEnd + 1)

	if l.c.peek() == '\'' || l.c.peek() == '"' {
		tok, ok, err := l.tryQuotedString()
		if err != nil || !ok {
			l.c.restoreTo(start)
			return Token{}, false
		}
		return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindPair}, true
	}

	l.c.skipWhile(func(r rune) bool { return !isWhitespace(r) })
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindPair}, true
}

// tryTag matches ('+'|'-') identifier.
func (l *Lexer) tryTag() (Token, bool) {
	sign := l.c.peek()
	if sign != '+' && sign != '-' {
		return Token{}, false
	}
	start := l.c.cursorPos()
	l.c.advance()
	idStart := l.c.cursorPos()
	l.c.skipWhile(func(r rune) bool { return !isWhitespace(r) && r != '+' && r != '-' && !isPunctuationButUnderscore(r) })
	if l.c.cursorPos() == idStart {
		l.c.restoreTo(start)
		return Token{}, false
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindTag}, true
}

func isPunctuationButUnderscore(r rune) bool {
	if r == '_' {
		return false
	}
	return isPunctuation(r)
}

// trySubstitution matches /A/B/[g], tryPattern matches /A/.
func (l *Lexer) trySubstitution() (Token, bool) {
	if l.c.peek() != '/' {
		return Token{}, false
	}
	start := l.c.cursorPos()
	l.c.advance()

	from, ok := l.scanUntilUnescapedSlash()
	if !ok || from == "" {
		l.c.restoreTo(start)
		return Token{}, false
	}
	to, ok := l.scanUntilUnescapedSlash()
	if !ok {
		l.c.restoreTo(start)
		return Token{}, false
	}
	if l.c.peek() == 'g' {
		l.c.advance()
	}
	after := l.c.peek()
	if !isWhitespace(after) && !l.c.eos() {
		l.c.restoreTo(start)
		return Token{}, false
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindSubstitution}, true
}

func (l *Lexer) tryPattern() (Token, bool) {
	if l.c.peek() != '/' {
		return Token{}, false
	}
	start := l.c.cursorPos()
	l.c.advance()

	_, ok := l.scanUntilUnescapedSlash()
	if !ok {
		l.c.restoreTo(start)
		return Token{}, false
	}
	after := l.c.peek()
	if !isWhitespace(after) && !l.c.eos() {
		l.c.restoreTo(start)
		return Token{}, false
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindPattern}, true
}

// scanUntilUnescapedSlash consumes runes up to (and past) the next
// unescaped '/', returning the content found.
func (l *Lexer) scanUntilUnescapedSlash() (string, bool) {
	var b strings.Builder
	for {
		if l.c.eos() {
			return "", false
		}
		r := l.c.peek()
		if r == '/' {
			l.c.advance()
			return b.String(), true
		}
		if r == '\\' {
			l.c.advance()
			if l.c.eos() {
				return "", false
			}
			b.WriteRune(l.c.peek())
			l.c.advance()
			continue
		}
		b.WriteRune(r)
		l.c.advance()
	}
}

func (l *Lexer) tryOperator() (Token, bool) {
	for _, op := range operators {
		if !strings.HasPrefix(l.c.remainder(), op) {
			continue
		}
		if wordOperators[op] {
			left := l.c.leftOf()
			right := l.c.runeAfter(len(op))
			if !isBoundary(left, rune(op[0])) || !isBoundary(rune(op[len(op)-1]), right) {
				continue
			}
		}
		start := l.c.cursorPos()
		l.c.restoreTo(start + len(op))
		return Token{Text: op, Kind: KindOperator}, true
	}
	return Token{}, false
}

func (l *Lexer) tryIdentifier() (Token, bool) {
	r := l.c.peek()
	if isDigit(r) || isWhitespace(r) || (isPunctuation(r) && r != '_' && r != '-' && r != '+') {
		return Token{}, false
	}
	start := l.c.cursorPos()
	l.c.skipWhile(func(r rune) bool {
		return !isWhitespace(r) && r != ':' && !isSingleCharOperatorRune(r)
	})
	if l.c.cursorPos() == start {
		return Token{}, false
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindIdentifier}, true
}

func isSingleCharOperatorRune(r rune) bool {
	switch r {
	case '=', '!', '<', '>', '~', '(', ')', '^', '*', '/', '%', ',':
		return true
	}
	return false
}

func (l *Lexer) tryWord() (Token, bool) {
	start := l.c.cursorPos()
	l.c.skipWhile(func(r rune) bool { return !isWhitespace(r) })
	if l.c.cursorPos() == start {
		return Token{}, false
	}
	return Token{Text: l.c.value[start:l.c.cursorPos()], Kind: KindWord}, true
}
