package signature

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokDot
	tokComma
	tokLT
	tokGT
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokQuestion
	tokAmp
	tokEllipsis
	tokAt
)

type token struct {
	kind tokenKind
	lit  string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.lit)
}

// lexer splits Java source-syntax type text into tokens. Generic closers
// are always single '>' tokens, so List<List<String>> needs no splitting.
type lexer struct {
	src string
	pos int
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += w
	}
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}
	}
	single := map[byte]tokenKind{
		',': tokComma, '<': tokLT, '>': tokGT, '[': tokLBracket, ']': tokRBracket,
		'(': tokLParen, ')': tokRParen, '?': tokQuestion, '&': tokAmp, '@': tokAt,
	}
	c := l.src[l.pos]
	if c == '.' {
		if len(l.src)-l.pos >= 3 && l.src[l.pos:l.pos+3] == "..." {
			l.pos += 3
			return token{kind: tokEllipsis, lit: "...", pos: start}
		}
		l.pos++
		return token{kind: tokDot, lit: ".", pos: start}
	}
	if k, ok := single[c]; ok {
		l.pos++
		return token{kind: k, lit: string(c), pos: start}
	}
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$') {
			break
		}
		l.pos += w
	}
	if l.pos == start {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += w
		return token{kind: tokIdent, lit: string(r), pos: start}
	}
	return token{kind: tokIdent, lit: l.src[start:l.pos], pos: start}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || r == '$' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}
