package nif

import (
	"fmt"
	"io"
	"strconv"
)

// indexAtPadWidth is the width of the padding reserved for an in-place
// `.indexat` patch: enough ASCII space for a leading '+' and up to 15
// decimal digits, comfortably covering any real file size.
const indexAtPadWidth = 16

// WriteOptions controls what Write produces in addition to the tree itself.
type WriteOptions struct {
	// WriteIndex, if true, builds the exported-symbol index while writing
	// the body and appends it as a trailing `.index` directive, patching a
	// reserved `.indexat` placeholder in place once the index's offset is
	// known. The sink passed to Write must implement io.WriteSeeker in
	// this case.
	WriteIndex bool

	// Visibility classifies a global symbol's index entry. If nil, every
	// entry is Exported.
	Visibility func(symbol string) Visibility
}

// Writer formats a *Module back to bytes deterministically.
type Writer struct {
	opts WriteOptions
}

// NewWriter returns a Writer with the given options.
func NewWriter(opts WriteOptions) *Writer {
	return &Writer{opts: opts}
}

// Write formats m to w using a Writer built with opts.
func Write(w io.Writer, m *Module, opts WriteOptions) error {
	return NewWriter(opts).Write(w, m)
}

// Write formats m to w.
func (wr *Writer) Write(w io.Writer, m *Module) error {
	seeker, err := wr.resolveSeeker(w)
	if err != nil {
		return err
	}

	cw := &countWriter{w: w}
	sep := func() error {
		if cw.n == 0 {
			return nil
		}
		return cw.writeByte('\n')
	}

	if err := wr.writeVersion(cw); err != nil {
		return err
	}

	var digitsOffset int
	if wr.opts.WriteIndex {
		if err := sep(); err != nil {
			return err
		}
		off, err := wr.writeIndexAtPlaceholder(cw)
		if err != nil {
			return err
		}
		digitsOffset = off
	}

	for _, kind := range []DirectiveKind{DirUnusedName, DirVendor, DirPlatform, DirConfig} {
		d, ok := m.Directive(kind)
		if !ok {
			continue
		}
		if err := sep(); err != nil {
			return err
		}
		if err := wr.writeSimpleDirective(cw, d); err != nil {
			return err
		}
	}

	var entries []IndexEntry
	for _, d := range m.Directives {
		if d.Kind != DirLang && d.Kind != DirDialect && d.Kind != DirUnknown {
			continue
		}
		if err := sep(); err != nil {
			return err
		}
		if err := wr.writeOtherDirective(cw, m.Arena, d, &entries); err != nil {
			return err
		}
	}

	for _, ref := range m.Body {
		if err := sep(); err != nil {
			return err
		}
		if err := wr.writeNode(cw, m.Arena, ref, &entries); err != nil {
			return err
		}
	}

	if wr.opts.WriteIndex {
		if err := sep(); err != nil {
			return err
		}
		indexOffset := cw.n
		if err := wr.writeIndex(cw, entries); err != nil {
			return err
		}
		if err := patchIndexAt(seeker, digitsOffset, indexOffset); err != nil {
			return err
		}
	}

	return nil
}

func (wr *Writer) resolveSeeker(w io.Writer) (io.WriteSeeker, error) {
	if !wr.opts.WriteIndex {
		return nil, nil
	}
	s, ok := w.(io.WriteSeeker)
	if !ok {
		return nil, ErrNonSeekableSink
	}
	return s, nil
}

// countWriter wraps an io.Writer, tracking the absolute number of bytes
// written so far so the Writer always knows the current output offset.
type countWriter struct {
	w io.Writer
	n int
}

func (c *countWriter) write(p []byte) error {
	nn, err := c.w.Write(p)
	c.n += nn
	return err
}

func (c *countWriter) writeByte(b byte) error { return c.write([]byte{b}) }

func (c *countWriter) writeString(s string) error { return c.write([]byte(s)) }

func (wr *Writer) writeVersion(cw *countWriter) error {
	return cw.writeString("(.nif26)")
}

// writeIndexAtPlaceholder emits "(.indexat " followed by indexAtPadWidth
// ASCII spaces and ")", and returns the offset of the first padding byte,
// which patchIndexAt later overwrites in place.
func (wr *Writer) writeIndexAtPlaceholder(cw *countWriter) (int, error) {
	if err := cw.writeString("(.indexat "); err != nil {
		return 0, err
	}
	digitsOffset := cw.n
	pad := make([]byte, indexAtPadWidth)
	for i := range pad {
		pad[i] = ' '
	}
	if err := cw.write(pad); err != nil {
		return 0, err
	}
	if err := cw.writeByte(')'); err != nil {
		return 0, err
	}
	return digitsOffset, nil
}

// patchIndexAt seeks back to the reserved padding region and overwrites it
// with "+<offset>" left-justified, leaving every other byte in the sink
// untouched.
func patchIndexAt(seeker io.WriteSeeker, digitsOffset, offset int) error {
	patch := fmt.Sprintf("+%d", offset)
	if len(patch) > indexAtPadWidth {
		return ErrIndexPadInsufficient
	}
	padded := make([]byte, indexAtPadWidth)
	copy(padded, patch)
	for i := len(patch); i < indexAtPadWidth; i++ {
		padded[i] = ' '
	}
	if _, err := seeker.Seek(int64(digitsOffset), io.SeekStart); err != nil {
		return err
	}
	_, err := seeker.Write(padded)
	return err
}

func (wr *Writer) writeSimpleDirective(cw *countWriter, d Directive) error {
	var tag string
	switch d.Kind {
	case DirUnusedName:
		if err := cw.writeString("(.unusedname "); err != nil {
			return err
		}
		if err := cw.write(EncodeBytes([]byte(d.Name), ContextIdent)); err != nil {
			return err
		}
		return cw.writeByte(')')
	case DirVendor:
		tag = ".vendor"
	case DirPlatform:
		tag = ".platform"
	case DirConfig:
		tag = ".config"
	default:
		return &WriteError{Msg: fmt.Sprintf("not a simple directive: %v", d.Kind)}
	}
	if err := cw.writeByte('('); err != nil {
		return err
	}
	if err := cw.writeString(tag); err != nil {
		return err
	}
	if err := cw.writeString(" \""); err != nil {
		return err
	}
	if err := cw.write(EncodeBytes([]byte(d.Str), ContextQuoted)); err != nil {
		return err
	}
	return cw.writeString("\")")
}

// writeOtherDirective emits a `.lang`-wrapped body (a DirDialect is written
// as `.lang` too) or an opaque unknown directive, recording any global SymbolDef it contains into
// entries exactly as writeNode would for a top-level body node; a lang
// scope is not exempt from index registration.
func (wr *Writer) writeOtherDirective(cw *countWriter, arena *Arena, d Directive, entries *[]IndexEntry) error {
	switch d.Kind {
	case DirLang, DirDialect:
		if err := cw.writeString("(.lang \""); err != nil {
			return err
		}
		if err := cw.write(EncodeBytes([]byte(d.LangName), ContextQuoted)); err != nil {
			return err
		}
		if err := cw.writeByte('"'); err != nil {
			return err
		}
		for _, ref := range d.LangBody {
			if err := cw.writeByte(' '); err != nil {
				return err
			}
			if err := wr.writeNode(cw, arena, ref, entries); err != nil {
				return err
			}
		}
		return cw.writeByte(')')

	case DirUnknown:
		return wr.writeAny(cw, arena, d.Raw, entries)

	default:
		return &WriteError{Msg: fmt.Sprintf("not a structural directive: %v", d.Kind)}
	}
}

// writeIndex emits "(.index (x sym +delta) ...)" with each entry's offset
// diff-encoded relative to the previous entry's absolute offset.
func (wr *Writer) writeIndex(cw *countWriter, entries []IndexEntry) error {
	if err := cw.writeString("(.index"); err != nil {
		return err
	}
	prev := 0
	for _, e := range entries {
		if err := cw.writeByte(' '); err != nil {
			return err
		}
		if err := cw.writeByte('('); err != nil {
			return err
		}
		if err := cw.writeByte(e.Visibility.wireByte()); err != nil {
			return err
		}
		if err := cw.writeByte(' '); err != nil {
			return err
		}
		if err := cw.write(EncodeBytes([]byte(e.Symbol), ContextIdent)); err != nil {
			return err
		}
		if err := cw.writeByte(' '); err != nil {
			return err
		}
		delta := e.Offset - prev
		prev = e.Offset
		sign := byte('+')
		if delta < 0 {
			sign = '-'
		}
		if err := cw.writeByte(sign); err != nil {
			return err
		}
		if err := cw.writeString(strconv.Itoa(absInt(delta))); err != nil {
			return err
		}
		if err := cw.writeByte(')'); err != nil {
			return err
		}
	}
	return cw.writeByte(')')
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// writeNode emits a node's prefix (line-info and comment) followed by the
// node itself.
func (wr *Writer) writeNode(cw *countWriter, arena *Arena, ref NodeRef, entries *[]IndexEntry) error {
	if err := wr.writePrefix(cw, arena.Prefix(ref)); err != nil {
		return err
	}
	return wr.writeAny(cw, arena, ref, entries)
}

func (wr *Writer) writeAny(cw *countWriter, arena *Arena, ref NodeRef, entries *[]IndexEntry) error {
	if ref.IsCompound() {
		return wr.writeCompound(cw, arena, ref, entries)
	}
	return wr.writeAtomBody(cw, arena, ref)
}

// writeCompound emits "(tag child1 child2 …)", recording an exported-symbol
// index entry if the first child is a global SymbolDef.
func (wr *Writer) writeCompound(cw *countWriter, arena *Arena, ref NodeRef, entries *[]IndexEntry) error {
	openOffset := cw.n
	if err := cw.writeByte('('); err != nil {
		return err
	}
	if err := cw.write(EncodeBytes([]byte(arena.Tag(ref)), ContextIdent)); err != nil {
		return err
	}

	children := arena.Children(ref)
	if len(children) > 0 {
		first := children[0]
		if first.IsAtom() && arena.AtomKind(first) == AtomSymbolDef {
			sym := arena.Text(first)
			if ClassifySymbol(sym) == SymbolGlobal {
				vis := Exported
				if wr.opts.Visibility != nil {
					vis = wr.opts.Visibility(sym)
				}
				*entries = append(*entries, IndexEntry{Visibility: vis, Symbol: sym, Offset: openOffset})
			}
		}
	}

	for _, ch := range children {
		if err := cw.writeByte(' '); err != nil {
			return err
		}
		if err := wr.writeNode(cw, arena, ch, entries); err != nil {
			return err
		}
	}
	return cw.writeByte(')')
}

func (wr *Writer) writeAtomBody(cw *countWriter, arena *Arena, ref NodeRef) error {
	switch arena.AtomKind(ref) {
	case AtomEmpty:
		return cw.writeByte('.')

	case AtomIdentifier, AtomSymbol:
		return cw.write(EncodeBytes([]byte(arena.Text(ref)), ContextIdent))

	case AtomSymbolDef:
		if err := cw.writeByte(':'); err != nil {
			return err
		}
		return cw.write(EncodeBytes([]byte(arena.Text(ref)), ContextIdent))

	case AtomInt:
		sign, digits := arena.IntValue(ref)
		if err := cw.writeByte(signByte(sign)); err != nil {
			return err
		}
		return cw.writeString(digits)

	case AtomUInt:
		// readNumber always requires a leading sign byte, even for a 'u'-suffixed
		// literal, where the sign itself is discarded; a bare digit run would
		// instead lex as line-info, so one is written here too.
		if err := cw.writeByte('+'); err != nil {
			return err
		}
		if err := cw.writeString(arena.UIntValue(ref)); err != nil {
			return err
		}
		return cw.writeByte('u')

	case AtomFloat:
		sign, digits, frac, hasFrac, exp, hasExp := arena.FloatValue(ref)
		if err := cw.writeByte(signByte(sign)); err != nil {
			return err
		}
		if err := cw.writeString(digits); err != nil {
			return err
		}
		if hasFrac {
			if err := cw.writeByte('.'); err != nil {
				return err
			}
			if err := cw.writeString(frac); err != nil {
				return err
			}
		}
		if hasExp {
			if err := cw.writeByte('E'); err != nil {
				return err
			}
			if err := cw.writeString(exp); err != nil {
				return err
			}
		}
		return nil

	case AtomChar:
		if err := cw.writeByte('\''); err != nil {
			return err
		}
		if err := cw.write(EncodeByte(nil, arena.CharValue(ref), ContextQuoted)); err != nil {
			return err
		}
		return cw.writeByte('\'')

	case AtomString:
		if err := cw.writeByte('"'); err != nil {
			return err
		}
		if err := cw.write(EncodeBytes([]byte(arena.Text(ref)), ContextQuoted)); err != nil {
			return err
		}
		return cw.writeByte('"')
	}

	return &WriteError{Msg: "unknown atom kind"}
}

func signByte(sign int) byte {
	if sign < 0 {
		return '-'
	}
	return '+'
}

func (wr *Writer) writePrefix(cw *countWriter, pfx Prefix) error {
	if pfx.HasLineInfo {
		if err := wr.writeLineInfo(cw, pfx.LineInfo); err != nil {
			return err
		}
	}
	if pfx.HasComment {
		if err := cw.writeByte('#'); err != nil {
			return err
		}
		if err := cw.write(EncodeBytes([]byte(pfx.Comment), ContextIdent)); err != nil {
			return err
		}
		if err := cw.writeByte('#'); err != nil {
			return err
		}
	}
	return nil
}

func (wr *Writer) writeLineInfo(cw *countWriter, li LineInfo) error {
	switch li.Kind {
	case LineInfoCol:
		return cw.write(deltaBytes(li.Col))

	case LineInfoColLine:
		if err := cw.write(deltaBytes(li.Col)); err != nil {
			return err
		}
		if err := cw.writeByte(','); err != nil {
			return err
		}
		return cw.write(deltaBytes(li.Line))

	case LineInfoColLineFile:
		if err := cw.write(deltaBytes(li.Col)); err != nil {
			return err
		}
		if err := cw.writeByte(','); err != nil {
			return err
		}
		if err := cw.write(deltaBytes(li.Line)); err != nil {
			return err
		}
		if err := cw.writeByte(','); err != nil {
			return err
		}
		return cw.write(encodeLineInfoFile(li.File))
	}
	return nil
}

func deltaBytes(v int32) []byte {
	if v < 0 {
		return append([]byte{'~'}, []byte(strconv.Itoa(int(-v)))...)
	}
	return []byte(strconv.Itoa(int(v)))
}

// encodeLineInfoFile escapes a ColLineFile filename for its position as the
// third field of a line-info triple: the fixed control set plus ',', which
// would otherwise be read as the field separator.
func encodeLineInfoFile(s string) []byte {
	dst := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == ',' || IsControlByte(b) {
			dst = append(dst, '\\', hexDigits[b>>4], hexDigits[b&0xF])
			continue
		}
		dst = append(dst, b)
	}
	return dst
}
