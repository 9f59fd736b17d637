package nif

import "strings"

// LineInfoKind distinguishes the three forms of line-info a node's prefix
// may carry.
type LineInfoKind int

const (
	// LineInfoNone means the prefix carries no line-info at all.
	LineInfoNone LineInfoKind = iota
	// LineInfoCol is a column delta relative to the parent.
	LineInfoCol
	// LineInfoColLine is a (column delta, line delta) pair relative to the parent.
	LineInfoColLine
	// LineInfoColLineFile is an absolute (column, line, file) triple. This
	// is the mandatory form for the module root.
	LineInfoColLineFile
)

// LineInfo is a node's column/line/file annotation, stored as deltas
// relative to the parent node except in the ColLineFile form, which is
// absolute and resets the file in effect for descendants.
type LineInfo struct {
	Kind LineInfoKind
	// Col holds the column delta for LineInfoCol and LineInfoColLine, or
	// the absolute column for LineInfoColLineFile.
	Col int32
	// Line holds the line delta for LineInfoColLine, or the absolute line
	// for LineInfoColLineFile. Unused for LineInfoCol.
	Line int32
	// File holds the escape-decoded filename for LineInfoColLineFile only.
	File string
}

// Prefix is the optional line-info and comment attached to a node. Source
// order is line-info then comment; either may be absent.
type Prefix struct {
	HasLineInfo bool
	LineInfo    LineInfo
	HasComment  bool
	Comment     string
}

// IsZero reports whether the prefix carries neither line-info nor a comment.
func (p Prefix) IsZero() bool {
	return !p.HasLineInfo && !p.HasComment
}

// AtomKind is the sum-type discriminator for leaf nodes.
type AtomKind int

const (
	// AtomEmpty is the missing/optional slot, written as a lone '.'.
	AtomEmpty AtomKind = iota
	// AtomIdentifier is a word with no dot.
	AtomIdentifier
	// AtomSymbol is a dotted name, not marked as a definition site.
	AtomSymbol
	// AtomSymbolDef is a Symbol marked with a leading ':' as a definition site.
	AtomSymbolDef
	// AtomInt is a signed decimal integer.
	AtomInt
	// AtomUInt is an unsigned decimal integer (trailing 'u' in source).
	AtomUInt
	// AtomFloat is a signed float; it contains '.' or 'E' in source.
	AtomFloat
	// AtomChar is a single byte between single quotes.
	AtomChar
	// AtomString is an arbitrary byte sequence between double quotes.
	AtomString
)

// SymbolClass is the classification of a Symbol or SymbolDef atom.
type SymbolClass int

const (
	// SymbolInvalid means the text does not satisfy the Symbol grammar.
	SymbolInvalid SymbolClass = iota
	// SymbolLocal is a symbol with exactly one dot and an all-digit tail.
	SymbolLocal
	// SymbolGlobal is a symbol with two or more dots.
	SymbolGlobal
)

// ClassifySymbol classifies already-expanded (no trailing dot) symbol text
// per the Invariants in spec.md §3: a Symbol contains at least one dot and
// does not begin with one; it is Local if it has exactly one dot and an
// all-digit tail, Global if it has two or more dots, and otherwise invalid
// (a single dot with a non-digit tail is rejected, since local symbols
// require digit disambiguation).
func ClassifySymbol(text string) SymbolClass {
	if text == "" || text[0] == '.' {
		return SymbolInvalid
	}
	n := strings.Count(text, ".")
	switch {
	case n == 0:
		return SymbolInvalid
	case n >= 2:
		return SymbolGlobal
	default:
		tail := text[strings.LastIndexByte(text, '.')+1:]
		if tail != "" && isAllDigits(tail) {
			return SymbolLocal
		}
		return SymbolInvalid
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// HasTrailingDot reports whether raw on-disk symbol text ends in a dot, the
// on-disk-only marker for trailing-dot expansion (spec.md §3 Invariant 2).
func HasTrailingDot(text string) bool {
	return len(text) > 0 && text[len(text)-1] == '.'
}

// ExpandTrailingDot appends suffix to a trailing-dot symbol's text, e.g.
// "foo.0." with suffix "mod" becomes "foo.0.mod".
func ExpandTrailingDot(text, suffix string) string {
	return text + suffix
}

// NodeRef is an index into an Arena, doubling as the Node/CompoundNode sum
// type: positive values (after the implicit -1 bias) index atoms, negative
// values index compound nodes, and zero is the nil reference. This avoids
// both a separate interface allocation per node and a two-word struct for
// every child slot, mirroring spec.md §9's "Arena + indices" design note.
type NodeRef int32

// NilRef is the zero NodeRef: no node.
const NilRef NodeRef = 0

// IsNil reports whether r refers to no node.
func (r NodeRef) IsNil() bool { return r == NilRef }

// IsCompound reports whether r refers to a compound node.
func (r NodeRef) IsCompound() bool { return r < 0 }

// IsAtom reports whether r refers to an atom.
func (r NodeRef) IsAtom() bool { return r > 0 }

func atomRef(i int) NodeRef     { return NodeRef(i + 1) }
func compoundRef(i int) NodeRef { return NodeRef(-(i + 1)) }
func (r NodeRef) atomIdx() int     { return int(r) - 1 }
func (r NodeRef) compoundIdx() int { return int(-r) - 1 }

type numValue struct {
	sign   int8
	digits string
	frac   string
	hasFrc bool
	exp    string
	hasExp bool
}

type atomNode struct {
	kind   AtomKind
	prefix Prefix

	text string // Identifier / Symbol / SymbolDef spelling, or string payload
	ch   byte   // AtomChar payload
	num  numValue
}

type compoundNode struct {
	tag      string
	children []NodeRef
	prefix   Prefix
}

// Arena owns all node storage for one parsed or constructed tree. Child
// references are NodeRef indices into the arena, not pointers: the arena
// owns everything and is freed as a unit by dropping it. Source byte
// buffers backing atom text are decoded into owned strings during
// construction (atoms never alias the input slice, since escape decoding
// must already have happened by the time an atom exists).
type Arena struct {
	atoms     []atomNode
	compounds []compoundNode
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) newAtom(n atomNode) NodeRef {
	a.atoms = append(a.atoms, n)
	return atomRef(len(a.atoms) - 1)
}

// NewEmpty adds an Empty atom.
func (a *Arena) NewEmpty(prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomEmpty, prefix: prefix})
}

// NewIdentifier adds an Identifier atom with the given decoded text.
func (a *Arena) NewIdentifier(text string, prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomIdentifier, text: text, prefix: prefix})
}

// NewSymbol adds a Symbol atom. def marks it as a SymbolDef (':' prefix).
func (a *Arena) NewSymbol(text string, def bool, prefix Prefix) NodeRef {
	kind := AtomSymbol
	if def {
		kind = AtomSymbolDef
	}
	return a.newAtom(atomNode{kind: kind, text: text, prefix: prefix})
}

// NewInt adds a signed IntLit atom. sign must be -1 or +1.
func (a *Arena) NewInt(sign int, digits string, prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomInt, prefix: prefix, num: numValue{sign: int8(sign), digits: digits}})
}

// NewUInt adds an unsigned UIntLit atom.
func (a *Arena) NewUInt(digits string, prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomUInt, prefix: prefix, num: numValue{digits: digits}})
}

// NewFloat adds a signed FloatLit atom. Either hasFrac or hasExp (or both)
// must be true, per the grammar requirement that a float contain '.' or 'E'.
func (a *Arena) NewFloat(sign int, digits, frac string, hasFrac bool, exp string, hasExp bool, prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomFloat, prefix: prefix, num: numValue{
		sign: int8(sign), digits: digits, frac: frac, hasFrc: hasFrac, exp: exp, hasExp: hasExp,
	}})
}

// NewChar adds a CharLit atom holding a single decoded byte.
func (a *Arena) NewChar(b byte, prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomChar, ch: b, prefix: prefix})
}

// NewString adds a StringLit atom holding decoded bytes (which may contain
// any byte, including zero and newline).
func (a *Arena) NewString(s string, prefix Prefix) NodeRef {
	return a.newAtom(atomNode{kind: AtomString, text: s, prefix: prefix})
}

// NewCompound adds a compound node with the given tag and children.
func (a *Arena) NewCompound(tag string, children []NodeRef, prefix Prefix) NodeRef {
	a.compounds = append(a.compounds, compoundNode{tag: tag, children: children, prefix: prefix})
	return compoundRef(len(a.compounds) - 1)
}

// AtomKind returns the atom kind at ref. It panics if ref is not an atom.
func (a *Arena) AtomKind(ref NodeRef) AtomKind {
	return a.atoms[ref.atomIdx()].kind
}

// Prefix returns the prefix attached to ref, whether atom or compound.
func (a *Arena) Prefix(ref NodeRef) Prefix {
	if ref.IsCompound() {
		return a.compounds[ref.compoundIdx()].prefix
	}
	return a.atoms[ref.atomIdx()].prefix
}

// SetPrefix replaces the prefix attached to ref.
func (a *Arena) SetPrefix(ref NodeRef, p Prefix) {
	if ref.IsCompound() {
		a.compounds[ref.compoundIdx()].prefix = p
		return
	}
	a.atoms[ref.atomIdx()].prefix = p
}

// Tag returns the tag of a compound node. It panics if ref is not a compound.
func (a *Arena) Tag(ref NodeRef) string {
	return a.compounds[ref.compoundIdx()].tag
}

// Children returns the children of a compound node. It panics if ref is not
// a compound.
func (a *Arena) Children(ref NodeRef) []NodeRef {
	return a.compounds[ref.compoundIdx()].children
}

// SetChildren replaces the children of a compound node.
func (a *Arena) SetChildren(ref NodeRef, children []NodeRef) {
	a.compounds[ref.compoundIdx()].children = children
}

// IsDirectiveTag reports whether a compound tag marks a directive: it
// begins with '.'.
func IsDirectiveTag(tag string) bool {
	return len(tag) > 0 && tag[0] == '.'
}

// Text returns the decoded text of an Identifier, Symbol, SymbolDef, or
// String atom. For other atom kinds it returns the empty string; it panics
// if ref is not an atom.
func (a *Arena) Text(ref NodeRef) string {
	return a.atoms[ref.atomIdx()].text
}

// SetText replaces the text of an Identifier, Symbol, or SymbolDef atom; used
// by trailing-dot expansion after parsing.
func (a *Arena) SetText(ref NodeRef, text string) {
	a.atoms[ref.atomIdx()].text = text
}

// CharValue returns the byte held by a CharLit atom.
func (a *Arena) CharValue(ref NodeRef) byte {
	return a.atoms[ref.atomIdx()].ch
}

// IntValue returns the sign (-1 or +1) and decimal digits of an IntLit atom.
func (a *Arena) IntValue(ref NodeRef) (sign int, digits string) {
	n := a.atoms[ref.atomIdx()].num
	return int(n.sign), n.digits
}

// UIntValue returns the decimal digits of a UIntLit atom.
func (a *Arena) UIntValue(ref NodeRef) string {
	return a.atoms[ref.atomIdx()].num.digits
}

// FloatValue returns the components of a FloatLit atom.
func (a *Arena) FloatValue(ref NodeRef) (sign int, digits, frac string, hasFrac bool, exp string, hasExp bool) {
	n := a.atoms[ref.atomIdx()].num
	return int(n.sign), n.digits, n.frac, n.hasFrc, n.exp, n.hasExp
}

// Each is a shallow iterator over a compound node's children; it does not
// recurse.
func (a *Arena) Each(ref NodeRef, fn func(i int, child NodeRef) error) error {
	for i, ch := range a.Children(ref) {
		if err := fn(i, ch); err != nil {
			return err
		}
	}
	return nil
}
