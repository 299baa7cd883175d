package engine

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenAtom
	tokenVariable
	tokenInteger
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
	tokenBar
	tokenDot
	tokenNeck     // :-
	tokenQuestion // ?-
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLess
	tokenLessEq
	tokenGreater
	tokenGreaterEq
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenAtom:
		return "atom"
	case tokenVariable:
		return "variable"
	case tokenInteger:
		return "integer"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	case tokenComma:
		return "','"
	case tokenBar:
		return "'|'"
	case tokenDot:
		return "'.'"
	case tokenNeck:
		return "':-'"
	case tokenQuestion:
		return "'?-'"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenLess:
		return "'<'"
	case tokenLessEq:
		return "'<='"
	case tokenGreater:
		return "'>'"
	case tokenGreaterEq:
		return "'>='"
	default:
		return "?"
	}
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexer turns source text into tokens, tracking line and column for
// error positions.
type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) peekRuneAt(off int) (rune, bool) {
	if l.pos+off >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos+off], true
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipBlank consumes whitespace, line comments, and block comments.
func (l *lexer) skipBlank() error {
	for {
		r, ok := l.peekRune()
		if !ok {
			return nil
		}
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '%':
			for {
				r, ok := l.peekRune()
				if !ok || r == '\n' {
					break
				}
				l.advance()
			}
		case r == '/':
			next, ok := l.peekRuneAt(1)
			if !ok || next != '*' {
				return nil
			}
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				r, ok := l.peekRune()
				if !ok {
					return l.errorf(line, col, "unterminated block comment")
				}
				l.advance()
				if r == '*' {
					if next, ok := l.peekRune(); ok && next == '/' {
						l.advance()
						break
					}
				}
			}
		default:
			return nil
		}
	}
}

// next produces the following token.
func (l *lexer) next() (token, error) {
	if err := l.skipBlank(); err != nil {
		return token{}, err
	}

	line, col := l.line, l.col
	r, ok := l.peekRune()
	if !ok {
		return token{kind: tokenEOF, line: line, col: col}, nil
	}

	switch {
	case unicode.IsDigit(r):
		var sb strings.Builder
		for {
			r, ok := l.peekRune()
			if !ok || !unicode.IsDigit(r) {
				break
			}
			sb.WriteRune(l.advance())
		}
		return token{kind: tokenInteger, text: sb.String(), line: line, col: col}, nil

	case unicode.IsLower(r):
		return token{kind: tokenAtom, text: l.ident(), line: line, col: col}, nil

	case unicode.IsUpper(r) || r == '_':
		return token{kind: tokenVariable, text: l.ident(), line: line, col: col}, nil

	case r == '\'':
		text, err := l.quoted()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokenAtom, text: text, line: line, col: col}, nil
	}

	l.advance()
	simple := func(k tokenKind) (token, error) {
		return token{kind: k, text: k.String(), line: line, col: col}, nil
	}
	switch r {
	case '(':
		return simple(tokenLParen)
	case ')':
		return simple(tokenRParen)
	case '[':
		return simple(tokenLBracket)
	case ']':
		return simple(tokenRBracket)
	case ',':
		return simple(tokenComma)
	case '|':
		return simple(tokenBar)
	case '.':
		return simple(tokenDot)
	case '+':
		return simple(tokenPlus)
	case '-':
		return simple(tokenMinus)
	case '*':
		return simple(tokenStar)
	case '/':
		return simple(tokenSlash)
	case '<':
		if next, ok := l.peekRune(); ok && next == '=' {
			l.advance()
			return simple(tokenLessEq)
		}
		return simple(tokenLess)
	case '>':
		if next, ok := l.peekRune(); ok && next == '=' {
			l.advance()
			return simple(tokenGreaterEq)
		}
		return simple(tokenGreater)
	case ':':
		if next, ok := l.peekRune(); ok && next == '-' {
			l.advance()
			return simple(tokenNeck)
		}
		return token{}, l.errorf(line, col, "unexpected ':'")
	case '?':
		if next, ok := l.peekRune(); ok && next == '-' {
			l.advance()
			return simple(tokenQuestion)
		}
		return token{}, l.errorf(line, col, "unexpected '?'")
	default:
		return token{}, l.errorf(line, col, "unexpected character %q", r)
	}
}

// ident consumes an unquoted atom or variable name.
func (l *lexer) ident() string {
	var sb strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok || (!unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_') {
			break
		}
		sb.WriteRune(l.advance())
	}
	return sb.String()
}

// quoted consumes a quoted atom body, handling escapes.
func (l *lexer) quoted() (string, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	var sb strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok {
			return "", l.errorf(line, col, "unterminated quoted atom")
		}
		l.advance()
		switch r {
		case '\'':
			return sb.String(), nil
		case '\\':
			esc, ok := l.peekRune()
			if !ok {
				return "", l.errorf(line, col, "unterminated quoted atom")
			}
			l.advance()
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\', '\'':
				sb.WriteRune(esc)
			default:
				return "", l.errorf(l.line, l.col, "unknown escape %q", esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
}
