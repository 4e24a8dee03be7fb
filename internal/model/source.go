// Package model defines the data structures shared by detection, scoring and instrumentation.
package model

// Path represents a file system path. Corpus paths are slash separated and
// relative to the corpus root.
type Path string

// TokenKind classifies a lexical token of a C kernel.
type TokenKind int

const (
	// TokenIdent is an identifier or keyword.
	TokenIdent TokenKind = iota
	// TokenNumber is an integer or floating point literal.
	TokenNumber
	// TokenString is a string or character literal.
	TokenString
	// TokenPunct is an operator or punctuation sequence.
	TokenPunct
)

// String returns a readable name for the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "ident"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenPunct:
		return "punct"
	default:
		return "unknown"
	}
}

// Token is a single lexical token. Comments are never emitted as tokens.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Offset int // byte offset of the first character in the source

	// Directive is true for tokens that belong to a preprocessor line.
	Directive bool
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// Is reports whether the token is punctuation or identifier text equal to s.
func (t Token) Is(s string) bool {
	return (t.Kind == TokenPunct || t.Kind == TokenIdent) && t.Text == s
}

// File represents a kernel source file on disk.
type File struct {
	FullPath  Path
	ShortPath Path
}
