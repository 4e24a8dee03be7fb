package adapter

import (
	"context"
	"fmt"
	"strings"

	m "securehls.dev/pkg/securehls/internal/model"
)

// CSourceAdapter encapsulates C lexing so the domain layer can reason about
// kernels as token streams without caring about comments, literals or
// preprocessor layout.
type CSourceAdapter interface {
	// Tokenize splits src into tokens. Comments are dropped; tokens on
	// preprocessor lines are flagged as directives.
	Tokenize(ctx context.Context, filename string, src []byte) ([]m.Token, error)
}

// LexError reports a lexical problem with its position.
type LexError struct {
	File    string
	Line    int
	Message string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

// LocalCSourceAdapter is a hand-written lexer for the C subset used by HLS kernels.
type LocalCSourceAdapter struct{}

// NewLocalCSourceAdapter constructs a LocalCSourceAdapter.
func NewLocalCSourceAdapter() *LocalCSourceAdapter {
	return &LocalCSourceAdapter{}
}

var punctuators = []string{
	"<<=", ">>=", "...",
	"<=", ">=", "==", "!=", "++", "--", "+=", "-=", "*=", "/=", "%=",
	"&=", "|=", "^=", "->", "&&", "||", "<<", ">>", "##",
}

type lexer struct {
	file      string
	src       []byte
	pos       int
	line      int
	lineStart bool
	directive bool
	tokens    []m.Token
}

// Tokenize implements CSourceAdapter.
func (a *LocalCSourceAdapter) Tokenize(ctx context.Context, filename string, src []byte) ([]m.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lx := &lexer{file: filename, src: src, line: 1, lineStart: true}
	if err := lx.run(); err != nil {
		return nil, err
	}

	return lx.tokens, nil
}

func (lx *lexer) errorf(format string, args ...interface{}) error {
	return &LexError{File: lx.file, Line: lx.line, Message: fmt.Sprintf(format, args...)}
}

func (lx *lexer) run() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case c == '\n':
			lx.newline()
			lx.pos++
		case c == '\\' && lx.peek(1) == '\n':
			// line continuation keeps directive mode alive
			lx.line++
			lx.pos += 2
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == '/' && lx.peek(1) == '/':
			lx.skipLineComment()
		case c == '/' && lx.peek(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return err
			}
		case c == '#' && lx.lineStart:
			lx.directive = true
			lx.emit(m.TokenPunct, lx.pos, lx.pos+1)
			lx.pos++
		case isIdentStart(c):
			lx.lexIdent()
		case isDigit(c) || (c == '.' && isDigit(lx.peek(1))):
			lx.lexNumber()
		case c == '"' || c == '\'':
			if err := lx.lexQuoted(c); err != nil {
				return err
			}
		default:
			lx.lexPunct()
		}
	}

	return nil
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}

	return 0
}

func (lx *lexer) newline() {
	lx.line++
	lx.lineStart = true
	lx.directive = false
}

func (lx *lexer) emit(kind m.TokenKind, start, end int) {
	lx.tokens = append(lx.tokens, m.Token{
		Kind:      kind,
		Text:      string(lx.src[start:end]),
		Line:      lx.line,
		Offset:    start,
		Directive: lx.directive,
	})
	lx.lineStart = false
}

func (lx *lexer) skipLineComment() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.pos++
	}
}

func (lx *lexer) skipBlockComment() error {
	startLine := lx.line
	lx.pos += 2

	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '*' && lx.peek(1) == '/' {
			lx.pos += 2
			return nil
		}

		if lx.src[lx.pos] == '\n' {
			lx.line++
		}

		lx.pos++
	}

	lx.line = startLine

	return lx.errorf("unterminated block comment")
}

func (lx *lexer) lexIdent() {
	start := lx.pos
	for lx.pos < len(lx.src) && isIdentPart(lx.src[lx.pos]) {
		lx.pos++
	}

	lx.emit(m.TokenIdent, start, lx.pos)
}

func (lx *lexer) lexNumber() {
	start := lx.pos

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isIdentPart(c) || c == '.' {
			lx.pos++
			continue
		}

		if (c == '+' || c == '-') && strings.ContainsRune("eEpP", rune(lx.src[lx.pos-1])) && !isHexPrefix(lx.src[start:lx.pos]) {
			lx.pos++
			continue
		}

		break
	}

	lx.emit(m.TokenNumber, start, lx.pos)
}

func (lx *lexer) lexQuoted(quote byte) error {
	start := lx.pos
	lx.pos++

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case c == '\\':
			lx.pos += 2
		case c == quote:
			lx.pos++
			lx.emit(m.TokenString, start, lx.pos)

			return nil
		case c == '\n':
			return lx.errorf("unterminated literal")
		default:
			lx.pos++
		}
	}

	return lx.errorf("unterminated literal")
}

func (lx *lexer) lexPunct() {
	for _, p := range punctuators {
		if strings.HasPrefix(string(lx.src[lx.pos:min(lx.pos+len(p), len(lx.src))]), p) {
			lx.emit(m.TokenPunct, lx.pos, lx.pos+len(p))
			lx.pos += len(p)

			return
		}
	}

	lx.emit(m.TokenPunct, lx.pos, lx.pos+1)
	lx.pos++
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexPrefix(b []byte) bool {
	return len(b) > 1 && b[0] == '0' && (b[1] == 'x' || b[1] == 'X') && !strings.ContainsAny(string(b), "pP")
}
