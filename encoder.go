package nif

import "strconv"

// reservedMarkers are the single-byte rewrite targets used by the canonical
// encoder: any literal occurrence of one of these bytes in source content
// must be escaped, since an unescaped occurrence would be ambiguous with
// the encoder's own structural markup.
const reservedMarkers = "AZE_OUXRK"

func isReservedMarker(b byte) bool {
	for i := 0; i < len(reservedMarkers); i++ {
		if reservedMarkers[i] == b {
			return true
		}
	}
	return false
}

// literalBytes renders src as canonical-encoder literal bytes: any reserved
// marker byte, or any byte that is not itself a valid identifier byte, is
// escaped as X<HH> (uppercase hex). allowDot exempts '.' from escaping,
// which applies only to the dots inside a Symbol's text.
func literalBytes(src []byte, allowDot bool) []byte {
	dst := make([]byte, 0, len(src))
	for _, b := range src {
		if b == '.' && allowDot {
			dst = append(dst, b)
			continue
		}
		if isReservedMarker(b) || !(isIdentStartByte(b) || isDigitByte(b)) {
			dst = append(dst, 'X', hexDigits[b>>4], hexDigits[b&0xF])
			continue
		}
		dst = append(dst, b)
	}
	return dst
}

// backrefTable records, for one canonical-encoding run, the table position
// at which each distinct string first appeared. Every append — whether or
// not it turns into a back-reference in the output — advances the table.
type backrefTable struct {
	first map[string]int
	next  int
}

func newBackrefTable() *backrefTable {
	return &backrefTable{first: make(map[string]int)}
}

// append returns the zero-based position of s's first occurrence, and
// whether this call is that first occurrence.
func (t *backrefTable) append(s string) (firstIndex int, isFirst bool) {
	if idx, ok := t.first[s]; ok {
		t.next++
		return idx, false
	}
	idx := t.next
	t.first[s] = idx
	t.next++
	return idx, true
}

// emitWithBackref appends either a literal or a back-reference for text,
// whichever is strictly shorter; a back-reference is only even considered
// past the first occurrence.
func emitWithBackref(buf []byte, table *backrefTable, text string, prefix byte, allowDot bool) []byte {
	idx, first := table.append(text)
	lit := literalBytes([]byte(text), allowDot)
	if !first {
		backref := append([]byte{prefix}, []byte(strconv.Itoa(idx))...)
		if len(backref) < len(lit) {
			return append(buf, backref...)
		}
	}
	return append(buf, lit...)
}

// encoder holds the per-call state for Encode: the two ordered back-
// reference tables (identifiers/symbols, and compound-tag node kinds) and
// the output buffer under construction.
type encoder struct {
	arena  *Arena
	idents *backrefTable
	kinds  *backrefTable
	buf    []byte
}

// Encode computes the canonical identifier-string encoding of the tree
// rooted at ref: a deterministic, one-way mapping from a node's shape and
// content to a string of identifier bytes, used to name a node without
// reference to its source position.
//
// Dots inside Symbol and SymbolDef text are emitted as-is, not escaped.
// Every other '.' (for example a Float's fraction point) is escaped as X2E,
// and the child separator is '_', so a symbol such as `foo.0` encodes
// differently from the two atoms `foo +0` (`foo_0`).
func Encode(arena *Arena, ref NodeRef) string {
	e := &encoder{arena: arena, idents: newBackrefTable(), kinds: newBackrefTable()}
	e.emitNode(ref)
	return trimTrailingZ(e.buf)
}

// trimTrailingZ strips the trailing run of compound-close markers. 'Z' only
// ever appears in encoder output as that marker — a literal 'Z' byte is
// always escaped, being a reserved marker itself — so trimming it here is
// exactly the "strip the trailing run of ')'" step applied after rewriting.
func trimTrailingZ(buf []byte) string {
	end := len(buf)
	for end > 0 && buf[end-1] == 'Z' {
		end--
	}
	return string(buf[:end])
}

func (e *encoder) emitNode(ref NodeRef) {
	if ref.IsCompound() {
		e.emitCompound(ref)
		return
	}
	e.emitAtom(ref)
}

// emitCompound emits "(tag child...)" in rewritten form. The separator
// between two adjacent emissions is omitted whenever it is not needed to
// keep the two apart: when the preceding emission ends with a compound
// close ('Z') or the following one begins with a compound open ('A'),
// nothing else could run into it, so no '_' is inserted.
func (e *encoder) emitCompound(ref NodeRef) {
	e.buf = append(e.buf, 'A')
	e.emitTag(e.arena.Tag(ref))

	for _, ch := range e.arena.Children(ref) {
		prevIsClose := len(e.buf) > 0 && e.buf[len(e.buf)-1] == 'Z'
		nextIsOpen := ch.IsCompound()
		if !prevIsClose && !nextIsOpen {
			e.buf = append(e.buf, '_')
		}
		e.emitNode(ch)
	}

	e.buf = append(e.buf, 'Z')
}

func (e *encoder) emitTag(tag string) {
	e.buf = emitWithBackref(e.buf, e.kinds, tag, 'K', false)
}

func (e *encoder) emitIdentOrSymbol(text string, allowDot bool) {
	e.buf = emitWithBackref(e.buf, e.idents, text, 'R', allowDot)
}

func (e *encoder) emitAtom(ref NodeRef) {
	switch e.arena.AtomKind(ref) {
	case AtomEmpty:
		e.buf = append(e.buf, 'E')

	case AtomIdentifier:
		e.emitIdentOrSymbol(e.arena.Text(ref), false)

	case AtomSymbol:
		e.emitIdentOrSymbol(e.arena.Text(ref), true)

	case AtomSymbolDef:
		e.buf = append(e.buf, 'O')
		e.emitIdentOrSymbol(e.arena.Text(ref), true)

	case AtomInt:
		sign, digits := e.arena.IntValue(ref)
		s := digits
		if sign < 0 {
			s = "-" + s
		}
		e.buf = append(e.buf, literalBytes([]byte(s), false)...)

	case AtomUInt:
		e.buf = append(e.buf, literalBytes([]byte(e.arena.UIntValue(ref)+"u"), false)...)

	case AtomFloat:
		sign, digits, frac, hasFrac, exp, hasExp := e.arena.FloatValue(ref)
		s := digits
		if sign < 0 {
			s = "-" + s
		}
		if hasFrac {
			s += "." + frac
		}
		if hasExp {
			s += "E" + exp
		}
		e.buf = append(e.buf, literalBytes([]byte(s), false)...)

	case AtomChar:
		e.buf = append(e.buf, literalBytes([]byte{e.arena.CharValue(ref)}, false)...)

	case AtomString:
		e.buf = append(e.buf, 'U')
		e.buf = append(e.buf, literalBytes([]byte(e.arena.Text(ref)), false)...)
		e.buf = append(e.buf, 'U')
	}
}
