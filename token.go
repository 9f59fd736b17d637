package nif

import "strconv"

// Location describes a position in an input byte sequence.
type Location struct {
	Name   string // Name is an identifier, usually a file path, for the location.
	Offset int    // Offset is a byte offset into the input. Starts at 0.
	Line   int    // Line is a line number, delimited by '\n'. Starts at 1.
	Column int    // Column is a column number. Starts at 1.
}

func (l Location) String() string {
	pos := strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column) + ":" + strconv.Itoa(l.Offset)
	if l.Name != "" {
		return l.Name + ":" + pos
	}
	return pos
}

// TokenKind is the classification of one lexical token.
type TokenKind int

// Token kinds produced by the Lexer. Line-info and comment prefixes, and
// compound tags, are scanned by dedicated Lexer entry points rather than
// through ReadAtom, since their grammar is positional (spec.md §4.3's
// lexer/parser integration note; spec.md §9's "two namespaces enforced only
// by position").
const (
	tEmpty TokenKind = iota

	TEOF

	TLParen
	TRParen
	TColon // ':' — symbol-definition prefix

	TLineInfo // digit/'~'/',' led — a line-info prefix
	TComment  // '#' ... '#' — a comment prefix

	TDotEmpty // a lone '.': the Empty atom

	TIdentifier // a word with no dot
	TSymbol     // a word with one or more dots; also returned for a ':'-prefixed definition

	TIntLit
	TUIntLit
	TFloatLit
	TCharLit
	TStringLit
)

var tokenKindNames = map[TokenKind]string{
	TEOF:        "EOF",
	TLParen:     "(",
	TRParen:     ")",
	TColon:      ":",
	TDotEmpty:   "empty atom",
	TIdentifier: "identifier",
	TSymbol:     "symbol",
	TIntLit:     "integer",
	TUIntLit:    "unsigned integer",
	TFloatLit:   "float",
	TCharLit:    "char",
	TStringLit:  "string",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Token is one lexical token with its start/end positions, raw source
// bytes, and (for atoms with a payload) decoded value.
type Token struct {
	Start, End Location
	Kind       TokenKind
	Raw        []byte

	// Text holds the decoded spelling for TIdentifier/TSymbol/TStringLit.
	Text string
	// Char holds the decoded byte for TCharLit.
	Char byte
	// Sign holds -1 or +1 for TIntLit/TFloatLit.
	Sign int
	// Digits, Frac, Exp, HasFrac, HasExp describe TIntLit/TUIntLit/TFloatLit payloads.
	Digits  string
	Frac    string
	HasFrac bool
	Exp     string
	HasExp  bool

	// LineInfo holds the parsed value for TLineInfo.
	LineInfo LineInfo
	// Comment holds the decoded body for TComment.
	Comment string
}

var noToken Token
