package nif

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Parser turns a byte stream into a *Module. It is single-threaded and
// synchronous: Parse does all of its work in one call and never blocks on
// anything but the caller-supplied byte slice.
type Parser struct {
	// Strict makes an `.indexat`/`.index` offset mismatch fatal instead of
	// a warning, and rejects unrecognized directives instead of preserving
	// them opaquely as DirUnknown.
	Strict bool
}

// NewParser returns a Parser with default (non-strict) settings.
func NewParser() *Parser {
	return &Parser{}
}

// ModuleSuffix derives the module suffix used to expand trailing-dot
// symbols from a source filename: the leading dot-separated component of
// the filename's stem, after stripping a ".nif" extension if present. For
// example, "foo.s.nif" yields "foo" and "mod.nif" yields "mod".
func ModuleSuffix(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, ".nif")
	if idx := strings.IndexByte(stem, '.'); idx >= 0 {
		return stem[:idx]
	}
	return stem
}

// Parse parses src as one NIF module. name is used for position reporting
// and, via ModuleSuffix, to derive the module suffix for trailing-dot
// symbol expansion. Use ParseSuffix to supply the suffix directly.
func (p *Parser) Parse(src []byte, name string) (*Module, error) {
	return p.ParseSuffix(src, name, ModuleSuffix(name))
}

// ParseSuffix parses src with an explicitly supplied module suffix.
func (p *Parser) ParseSuffix(src []byte, name, suffix string) (*Module, error) {
	st := &parseState{
		p:      p,
		r:      NewReader(src, name),
		arena:  NewArena(),
		suffix: suffix,
	}
	st.lx = NewLexer(st.r)
	return st.parseModule()
}

type parseState struct {
	p      *Parser
	r      *Reader
	lx     *Lexer
	arena  *Arena
	suffix string
}

func (st *parseState) err(kind ErrorKind, offset int, format string, args ...interface{}) *LexError {
	return parseErrorf(kind, offset, format, args...)
}

func (st *parseState) parseModule() (*Module, error) {
	m := &Module{Arena: st.arena, Suffix: st.suffix}

	// The version directive must be the very first bytes of input; no
	// preceding whitespace is permitted.
	verOffset := st.r.Offset()
	if b, ok := st.r.Peek(); !ok || b != '(' {
		return nil, st.err(UnrecognizedVersion, verOffset, "expected version directive at start of input")
	}
	verRef, err := st.parseCompoundBody(Prefix{})
	if err != nil {
		return nil, err
	}
	verDir, err := st.parseVersionDirective(st.arena.Tag(verRef), verOffset)
	if err != nil {
		return nil, err
	}
	m.Directives = append(m.Directives, verDir)

	var firstBody NodeRef
	haveFirstBody := false
	var indexOffset int
	haveIndexOffset := false

directiveLoop:
	for {
		st.r.SkipWhitespace()
		if st.r.AtEOF() {
			break
		}
		if st.lx.PeekKind() != TLParen {
			break
		}

		openOffset := st.r.Offset()
		ref, err := st.parseCompoundBody(Prefix{})
		if err != nil {
			return nil, err
		}
		tag := st.arena.Tag(ref)

		switch {
		case !IsDirectiveTag(tag):
			firstBody, haveFirstBody = ref, true
			break directiveLoop

		case tag == ".index":
			idx, err := st.parseIndexFromCompound(ref)
			if err != nil {
				return nil, err
			}
			m.Index = idx
			indexOffset, haveIndexOffset = openOffset, true

		default:
			dir, err := st.interpretDirective(tag, ref, openOffset)
			if err != nil {
				return nil, err
			}
			m.Directives = append(m.Directives, dir)
		}
	}

	if haveFirstBody {
		m.Body = append(m.Body, firstBody)
	}

bodyLoop:
	for {
		st.r.SkipWhitespace()
		if st.r.AtEOF() {
			break
		}

		pfx, err := st.parsePrefix()
		if err != nil {
			return nil, err
		}

		switch st.lx.PeekKind() {
		case TRParen:
			return nil, st.err(UnexpectedClose, st.r.Offset(), "unexpected ')'")

		case TLParen:
			openOffset := st.r.Offset()
			ref, err := st.parseCompoundBody(pfx)
			if err != nil {
				return nil, err
			}
			if st.arena.Tag(ref) == ".index" {
				idx, err := st.parseIndexFromCompound(ref)
				if err != nil {
					return nil, err
				}
				m.Index = idx
				indexOffset, haveIndexOffset = openOffset, true
				break bodyLoop
			}
			m.Body = append(m.Body, ref)

		default:
			ref, err := st.parseAtom(pfx)
			if err != nil {
				return nil, err
			}
			m.Body = append(m.Body, ref)
		}
	}

	if iv, ok := m.Directive(DirIndexAt); ok {
		switch {
		case !haveIndexOffset:
			mw := &MismatchWarning{Declared: iv.IndexAtOffset, Actual: -1, Offset: verOffset}
			if st.p.Strict {
				return nil, st.err(IndexOffsetMismatch, verOffset, "%s", mw.Error())
			}
			m.Warnings = append(m.Warnings, mw)

		case iv.IndexAtOffset != indexOffset:
			mw := &MismatchWarning{Declared: iv.IndexAtOffset, Actual: indexOffset, Offset: indexOffset}
			if st.p.Strict {
				return nil, st.err(IndexOffsetMismatch, indexOffset, "%s", mw.Error())
			}
			m.Warnings = append(m.Warnings, mw)
		}
	}

	return m, nil
}

// parseVersionDirective validates the magic-cookie tag, accepting both the
// current ".nif26" form and the legacy ".nif24" form on input; the Writer
// only ever emits ".nif26".
func (st *parseState) parseVersionDirective(tag string, offset int) (Directive, error) {
	if !strings.HasPrefix(tag, ".nif") {
		return Directive{}, st.err(UnrecognizedVersion, offset, "expected version directive, got %q", tag)
	}
	switch tag[4:] {
	case "26":
		return Directive{Kind: DirVersion, Version: 26}, nil
	case "24":
		return Directive{Kind: DirVersion, Version: 24}, nil
	default:
		return Directive{}, st.err(UnrecognizedVersion, offset, "unrecognized version directive %q", tag)
	}
}

// interpretDirective classifies an already-parsed directive compound by its
// tag. Unrecognized tags are preserved opaquely as DirUnknown unless the
// parser is in strict mode.
func (st *parseState) interpretDirective(tag string, ref NodeRef, offset int) (Directive, error) {
	children := st.arena.Children(ref)

	switch tag {
	case ".indexat":
		if len(children) != 1 {
			return Directive{}, st.err(BadNumber, offset, "%s takes exactly one argument", tag)
		}
		n, ok := st.intChildValue(children[0])
		if !ok {
			return Directive{}, st.err(BadNumber, offset, "%s argument is not an integer", tag)
		}
		// The declared offset is all that's kept; the directive's own source
		// span (including its padding) is not recorded — see the note on
		// Directive.IndexAtOffset.
		return Directive{Kind: DirIndexAt, IndexAtOffset: n}, nil

	case ".unusedname":
		if len(children) != 1 {
			return Directive{}, st.err(MalformedSymbol, offset, "%s takes exactly one argument", tag)
		}
		name, ok := st.textChildValue(children[0])
		if !ok {
			return Directive{}, st.err(MalformedSymbol, offset, "%s argument is not a name", tag)
		}
		return Directive{Kind: DirUnusedName, Name: name}, nil

	case ".vendor", ".platform", ".config":
		if len(children) != 1 {
			return Directive{}, st.err(BadNumber, offset, "%s takes exactly one argument", tag)
		}
		str, ok := st.textChildValue(children[0])
		if !ok {
			return Directive{}, st.err(BadNumber, offset, "%s argument is not a string", tag)
		}
		kind := map[string]DirectiveKind{".vendor": DirVendor, ".platform": DirPlatform, ".config": DirConfig}[tag]
		return Directive{Kind: kind, Str: str}, nil

	case ".lang", ".dialect":
		if len(children) < 1 {
			return Directive{}, st.err(BadNumber, offset, "%s requires a scope name", tag)
		}
		name, ok := st.textChildValue(children[0])
		if !ok {
			return Directive{}, st.err(BadNumber, offset, "%s scope name is not a string", tag)
		}
		kind := DirLang
		if tag == ".dialect" {
			kind = DirDialect
		}
		return Directive{Kind: kind, LangName: name, LangBody: children[1:]}, nil

	default:
		if st.p.Strict {
			return Directive{}, st.err(UnsupportedDirective, offset, "unrecognized directive %q", tag)
		}
		return Directive{Kind: DirUnknown, Raw: ref}, nil
	}
}

func (st *parseState) intChildValue(ref NodeRef) (int, bool) {
	if !ref.IsAtom() {
		return 0, false
	}
	switch st.arena.AtomKind(ref) {
	case AtomInt:
		sign, digits := st.arena.IntValue(ref)
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, false
		}
		return sign * n, true
	case AtomUInt:
		n, err := strconv.Atoi(st.arena.UIntValue(ref))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func (st *parseState) textChildValue(ref NodeRef) (string, bool) {
	if !ref.IsAtom() {
		return "", false
	}
	switch st.arena.AtomKind(ref) {
	case AtomIdentifier, AtomSymbol, AtomSymbolDef, AtomString:
		return st.arena.Text(ref), true
	}
	return "", false
}

// parseIndexFromCompound interprets an already-parsed ".index" compound's
// children as diff-encoded index entries: each child is "(x sym +delta)"
// or "(h sym +delta)", where delta is relative to the previous entry's
// absolute offset (or zero for the first entry).
func (st *parseState) parseIndexFromCompound(ref NodeRef) (*Index, error) {
	idx := &Index{}
	cumulative := 0
	for _, child := range st.arena.Children(ref) {
		if !child.IsCompound() {
			return nil, st.err(BadNumber, 0, "index entry is not a compound node")
		}
		var vis Visibility
		switch st.arena.Tag(child) {
		case "x":
			vis = Exported
		case "h":
			vis = Hidden
		default:
			return nil, st.err(BadNumber, 0, "unrecognized index entry tag %q", st.arena.Tag(child))
		}
		gc := st.arena.Children(child)
		if len(gc) != 2 {
			return nil, st.err(BadNumber, 0, "index entry requires exactly a symbol and a delta")
		}
		sym, ok := st.textChildValue(gc[0])
		if !ok {
			return nil, st.err(MalformedSymbol, 0, "index entry symbol is not a name")
		}
		delta, ok := st.intChildValue(gc[1])
		if !ok {
			return nil, st.err(BadNumber, 0, "index entry delta is not an integer")
		}
		cumulative += delta
		idx.Entries = append(idx.Entries, IndexEntry{Visibility: vis, Symbol: sym, Offset: cumulative})
	}
	return idx, nil
}

// parsePrefix reads an optional line-info then an optional comment.
func (st *parseState) parsePrefix() (Prefix, error) {
	var pfx Prefix
	if st.lx.PeekKind() == TLineInfo {
		tok, err := st.lx.ReadLineInfo()
		if err != nil {
			return pfx, err
		}
		pfx.HasLineInfo = true
		pfx.LineInfo = tok.LineInfo
	}
	if st.lx.PeekKind() == TComment {
		tok, err := st.lx.ReadComment()
		if err != nil {
			return pfx, err
		}
		pfx.HasComment = true
		pfx.Comment = tok.Comment
	}
	return pfx, nil
}

// parseNode reads one optional prefix followed by either a compound node or
// an atom.
func (st *parseState) parseNode() (NodeRef, error) {
	pfx, err := st.parsePrefix()
	if err != nil {
		return NilRef, err
	}
	if st.lx.PeekKind() == TLParen {
		return st.parseCompoundBody(pfx)
	}
	return st.parseAtom(pfx)
}

// parseCompoundBody parses "(" tag child* ")". The caller must have already
// consumed any prefix and confirmed the current byte is '('.
func (st *parseState) parseCompoundBody(pfx Prefix) (NodeRef, error) {
	openOffset := st.r.Offset()
	st.r.Advance(1) // '('

	tag, err := st.lx.ReadTag()
	if err != nil {
		return NilRef, err
	}

	var children []NodeRef
	for {
		st.r.SkipWhitespace()
		if st.lx.PeekKind() == TRParen {
			st.r.Advance(1)
			break
		}
		if st.r.AtEOF() {
			return NilRef, st.err(UnterminatedCompound, openOffset, "unterminated compound %q", tag)
		}
		child, err := st.parseNode()
		if err != nil {
			return NilRef, err
		}
		children = append(children, child)
	}

	return st.arena.NewCompound(tag, children, pfx), nil
}

// parseAtom reads one atom token and adds the corresponding node to the
// arena, expanding a trailing-dot Symbol/SymbolDef using the module suffix
// and validating the result against the Symbol grammar.
func (st *parseState) parseAtom(pfx Prefix) (NodeRef, error) {
	isDef := false
	if b, ok := st.r.Peek(); ok && b == ':' {
		isDef = true
	}
	start := st.r.Offset()

	tok, err := st.lx.ReadAtom()
	if err != nil {
		return NilRef, err
	}

	switch tok.Kind {
	case TDotEmpty:
		return st.arena.NewEmpty(pfx), nil

	case TIdentifier:
		return st.arena.NewIdentifier(tok.Text, pfx), nil

	case TSymbol:
		text := tok.Text
		if HasTrailingDot(text) {
			if st.suffix == "" {
				return NilRef, st.err(TrailingDotWithoutSuffix, start,
					"trailing-dot symbol %q has no module suffix available", text)
			}
			text = ExpandTrailingDot(text, st.suffix)
		}
		if ClassifySymbol(text) == SymbolInvalid {
			return NilRef, st.err(MalformedSymbol, start, "invalid symbol %q", text)
		}
		return st.arena.NewSymbol(text, isDef, pfx), nil

	case TIntLit:
		return st.arena.NewInt(tok.Sign, tok.Digits, pfx), nil

	case TUIntLit:
		return st.arena.NewUInt(tok.Digits, pfx), nil

	case TFloatLit:
		return st.arena.NewFloat(tok.Sign, tok.Digits, tok.Frac, tok.HasFrac, tok.Exp, tok.HasExp, pfx), nil

	case TCharLit:
		return st.arena.NewChar(tok.Char, pfx), nil

	case TStringLit:
		return st.arena.NewString(tok.Text, pfx), nil

	default:
		return NilRef, st.err(BadNumber, start, "unexpected token %s", tok.Kind)
	}
}
