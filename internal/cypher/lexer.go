package cypher

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokWord        tokenKind = iota // keyword, identifier or number
	tokString                       // '...' or "..."
	tokQuotedIdent                  // `...`
	tokPunct                        // any other single rune
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) isPunct(r string) bool {
	return t.kind == tokPunct && t.text == r
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

// tokenize splits a single Cypher line into tokens. It is deliberately
// shallow: it knows about literals and brackets, nothing about clauses.
// Unterminated literals and unbalanced brackets are errors.
func tokenize(s string) ([]token, error) {
	var (
		tokens []token
		stack  []rune
	)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch {
		case unicode.IsSpace(r):
			i += size

		case r == '\'' || r == '"' || r == '`':
			end, err := scanQuoted(s, i, r)
			if err != nil {
				return nil, err
			}
			kind := tokString
			if r == '`' {
				kind = tokQuotedIdent
			}
			tokens = append(tokens, token{kind: kind, text: s[i:end], pos: i})
			i = end

		case isWordRune(r):
			start := i
			for i < len(s) {
				r, size = utf8.DecodeRuneInString(s[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
			tokens = append(tokens, token{kind: tokWord, text: s[start:i], pos: start})

		default:
			switch r {
			case '(', '[', '{':
				stack = append(stack, r)
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1] != closers[r] {
					return nil, fmt.Errorf("unbalanced %q at offset %d", r, i)
				}
				stack = stack[:len(stack)-1]
			}
			tokens = append(tokens, token{kind: tokPunct, text: s[i : i+size], pos: i})
			i += size
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}
	return tokens, nil
}

// scanQuoted returns the offset just past the literal opened at start.
// Backslash escapes apply inside string literals; a doubled backtick
// escapes inside quoted identifiers.
func scanQuoted(s string, start int, quote rune) (int, error) {
	for i := start + 1; i < len(s); i++ {
		c := rune(s[i])
		if c == '\\' && quote != '`' {
			i++
			continue
		}
		if c == quote {
			if quote == '`' && i+1 < len(s) && rune(s[i+1]) == '`' {
				i++
				continue
			}
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated literal starting at offset %d", start)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
