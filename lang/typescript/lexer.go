package typescript

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jward/recast/lang"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokPunct
)

type token struct {
	Kind tokenKind
	Text string
	Str  string // decoded value for tokString
	Line int
	Col  int
}

var keywords = map[string]bool{
	"let": true, "const": true, "var": true, "if": true, "else": true,
	"while": true, "for": true, "of": true, "in": true, "return": true,
	"break": true, "continue": true, "try": true, "catch": true,
	"finally": true, "function": true, "true": true, "false": true,
	"null": true,
	// Recognized so the parser can name them in errors.
	"class": true, "new": true, "async": true, "await": true, "yield": true,
	"import": true, "export": true, "switch": true, "do": true,
	"throw": true, "delete": true, "typeof": true, "instanceof": true,
	"void": true, "this": true,
}

// Multi-rune punctuators, longest first so "===" wins over "==" over "=".
var puncts = []string{
	"===", "!==", "=>", "==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".", "?",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// scan tokenizes the whole input up front. Comments and whitespace are
// skipped; an EOF token is always appended.
func (l *lexer) scan() ([]token, error) {
	var toks []token
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			toks = append(toks, token{Kind: tokEOF, Line: l.line, Col: l.col})
			return toks, nil
		}
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance(1)
		case c == '\n':
			l.pos++
			l.line++
			l.col = 1
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				_, size := utf8.DecodeRuneInString(l.src[l.pos:])
				l.advance(size)
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.advance(2)
			for l.pos < len(l.src) {
				if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
					l.advance(2)
					break
				}
				if l.src[l.pos] == '\n' {
					l.pos++
					l.line++
					l.col = 1
				} else {
					_, size := utf8.DecodeRuneInString(l.src[l.pos:])
					l.advance(size)
				}
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	line, col := l.line, l.col
	c, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	switch {
	case c == '_' || c == '$' || unicode.IsLetter(c):
		start := l.pos
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			l.advance(size)
		}
		text := l.src[start:l.pos]
		kind := tokIdent
		if keywords[text] {
			kind = tokKeyword
		}
		return token{Kind: kind, Text: text, Line: line, Col: col}, nil

	case c >= '0' && c <= '9':
		start := l.pos
		if c == '0' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
			l.advance(2)
			digits := 0
			for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
				l.advance(1)
				digits++
			}
			if digits == 0 {
				return token{}, l.errf(line, col, "", "malformed hex literal")
			}
		} else {
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.advance(1)
			}
			if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
				l.advance(1)
				for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
					l.advance(1)
				}
			}
			if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
				j := l.pos + 1
				if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
					j++
				}
				if j < len(l.src) && isDigit(l.src[j]) {
					l.advance(j - l.pos)
					for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
						l.advance(1)
					}
				}
			}
		}
		// An identifier character running into a number would otherwise split
		// into two tokens and silently change meaning.
		if r, _ := utf8.DecodeRuneInString(l.src[l.pos:]); r == '_' || r == '$' || unicode.IsLetter(r) {
			return token{}, l.errf(line, col, "", fmt.Sprintf("malformed number literal %q", l.src[start:l.pos]))
		}
		return token{Kind: tokNumber, Text: l.src[start:l.pos], Line: line, Col: col}, nil

	case c == '"' || c == '\'':
		return l.scanString(byte(c), line, col)

	case c == '`':
		return token{}, l.errf(line, col, "template literal", "template literals are not supported")
	}

	for _, p := range puncts {
		if strings.HasPrefix(l.src[l.pos:], p) {
			l.advance(len(p))
			return token{Kind: tokPunct, Text: p, Line: line, Col: col}, nil
		}
	}
	return token{}, l.errf(line, col, "", fmt.Sprintf("unexpected character %q", c))
}

func (l *lexer) scanString(quote byte, line, col int) (token, error) {
	l.advance(1)
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.advance(1)
			return token{Kind: tokString, Text: b.String(), Str: b.String(), Line: line, Col: col}, nil
		case '\n':
			return token{}, l.errf(line, col, "", "unterminated string literal")
		case '\\':
			l.advance(1)
			if l.pos >= len(l.src) {
				return token{}, l.errf(line, col, "", "unterminated string literal")
			}
			switch e := l.src[l.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'', '`':
				b.WriteByte(e)
			case '0':
				b.WriteByte(0)
			default:
				return token{}, l.errf(l.line, l.col, "", fmt.Sprintf("unknown escape sequence \\%c", e))
			}
			l.advance(1)
		default:
			_, size := utf8.DecodeRuneInString(l.src[l.pos:])
			b.WriteString(l.src[l.pos : l.pos+size])
			l.advance(size)
		}
	}
	return token{}, l.errf(line, col, "", "unterminated string literal")
}

func (l *lexer) errf(line, col int, construct, msg string) error {
	return &lang.ParseError{
		Language:  languageName,
		Construct: construct,
		Line:      line,
		Col:       col,
		Msg:       msg,
	}
}

// advance consumes n bytes, counting columns in runes so error positions stay
// correct past multibyte identifiers.
func (l *lexer) advance(n int) {
	l.col += utf8.RuneCountInString(l.src[l.pos : l.pos+n])
	l.pos += n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// parseNumber converts a scanned number token, handling the hex form that
// strconv.ParseFloat does not accept on its own.
func parseNumber(text string) (float64, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		n, err := strconv.ParseUint(text[2:], 16, 64)
		return float64(n), err
	}
	return strconv.ParseFloat(text, 64)
}
