package nif

// Reader is a buffered cursor over an input byte sequence. It tracks the
// absolute byte offset, line, and column of the current position, and
// provides the peek/advance primitives the Lexer and Parser build on. It
// does no I/O of its own; callers provide the whole input up front.
type Reader struct {
	src  []byte
	pos  int
	line int
	col  int
	name string
}

// NewReader returns a Reader over src. name is used only to populate
// Location.Name on positions taken from this reader; it is typically the
// source file's path.
func NewReader(src []byte, name string) *Reader {
	return &Reader{
		src:  src,
		line: 1,
		col:  1,
		name: name,
	}
}

// Offset returns the current absolute byte offset into the input. This is
// always a valid offset for `.indexat` placement: it points at the byte
// that would be read next, or len(src) at end of input.
func (r *Reader) Offset() int {
	return r.pos
}

// Location returns the current position as a Location.
func (r *Reader) Location() Location {
	return Location{Name: r.name, Offset: r.pos, Line: r.line, Column: r.col}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.src) - r.pos
}

// AtEOF reports whether the reader has consumed the entire input.
func (r *Reader) AtEOF() bool {
	return r.pos >= len(r.src)
}

// Peek returns the byte at the current position and true, or 0 and false at
// end of input.
func (r *Reader) Peek() (byte, bool) {
	return r.PeekAt(0)
}

// PeekAt returns the byte n bytes ahead of the current position (PeekAt(0)
// is equivalent to Peek) and true, or 0 and false if that position is past
// the end of input.
func (r *Reader) PeekAt(n int) (byte, bool) {
	i := r.pos + n
	if i < 0 || i >= len(r.src) {
		return 0, false
	}
	return r.src[i], true
}

// Advance consumes n bytes, updating line and column tracking, and returns
// the number of bytes actually consumed (less than n only at end of input).
func (r *Reader) Advance(n int) int {
	end := r.pos + n
	if end > len(r.src) {
		end = len(r.src)
	}
	for _, b := range r.src[r.pos:end] {
		if b == '\n' {
			r.line++
			r.col = 1
		} else {
			r.col++
		}
	}
	consumed := end - r.pos
	r.pos = end
	return consumed
}

// isSpace reports whether b is one of the NIF whitespace bytes: space, tab,
// LF, or CR.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// SkipWhitespace consumes a run of whitespace bytes and returns how many
// were consumed.
func (r *Reader) SkipWhitespace() int {
	n := 0
	for {
		b, ok := r.Peek()
		if !ok || !isSpace(b) {
			return n
		}
		r.Advance(1)
		n++
	}
}

// Slice returns the raw bytes between two offsets taken from this reader.
func (r *Reader) Slice(start, end int) []byte {
	return r.src[start:end]
}
