package nif

// Lexer classifies the byte at the Reader's current position into the next
// Token. It shares its low-level byte classification (isIdentStartByte,
// isDigitByte) with the canonical encoder, which uses the same rules to
// decide which literal bytes must be escaped (spec.md §4.3).
type Lexer struct {
	r *Reader
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r *Reader) *Lexer {
	return &Lexer{r: r}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func (lx *Lexer) start() Location { return lx.r.Location() }

func (lx *Lexer) tok(kind TokenKind, start Location, raw []byte) Token {
	return Token{Kind: kind, Start: start, End: lx.r.Location(), Raw: raw}
}

// ReadTag reads a compound node's tag, which begins immediately after '('.
// A leading '.' is permitted only here (spec.md §4.3, §4.4): it marks the
// compound as a directive and is kept as the first byte of the returned
// tag string (e.g. ".nif26"). Tag reading is a Parser-position concern, not
// a generic atom classification, since the same bytes without the leading
// dot form an ordinary Identifier elsewhere (spec.md §9's "two namespaces,
// enforced only by position").
func (lx *Lexer) ReadTag() (string, error) {
	start := lx.start()
	var buf []byte
	if b, ok := lx.r.Peek(); ok && b == '.' {
		buf = append(buf, '.')
		lx.r.Advance(1)
	}
	word, err := lx.scanWordBytes()
	if err != nil {
		return "", err
	}
	if len(word) == 0 {
		return "", parseErrorf(BadNumber, start.Offset, "expected identifier tag")
	}
	buf = append(buf, word...)
	return string(buf), nil
}

// scanWordBytes consumes IdentStart IdentChar* and returns the decoded
// bytes (escapes resolved). It does not consume a trailing dotted tail;
// callers that want Symbol scanning call scanSymbolTail afterward.
func (lx *Lexer) scanWordBytes() ([]byte, error) {
	var out []byte
	first := true
	for {
		b, ok := lx.r.Peek()
		if !ok {
			break
		}
		if b == '\\' {
			dec, n, err := lx.decodeEscapeAt()
			if err != nil {
				return nil, err
			}
			_ = n
			out = append(out, dec)
			first = false
			continue
		}
		if first {
			if !isIdentStartByte(b) {
				break
			}
		} else if !isIdentStartByte(b) && !isDigitByte(b) {
			break
		}
		out = append(out, b)
		lx.r.Advance(1)
		first = false
	}
	return out, nil
}

// decodeEscapeAt decodes a \HH escape at the current position and advances
// past it, returning the decoded byte.
func (lx *Lexer) decodeEscapeAt() (byte, int, error) {
	off := lx.r.Offset()
	b0, _ := lx.r.Peek()
	if b0 != '\\' {
		return 0, 0, parseErrorf(BadEscape, off, "expected '\\'")
	}
	b1, ok1 := lx.r.PeekAt(1)
	b2, ok2 := lx.r.PeekAt(2)
	if !ok1 || !ok2 {
		return 0, 0, parseErrorf(BadEscape, off, "truncated escape sequence")
	}
	dec, n, err := DecodeEscape([]byte{b0, b1, b2})
	if err != nil {
		le, _ := err.(*LexError)
		if le != nil {
			le.Offset = off
		}
		return 0, 0, err
	}
	lx.r.Advance(n)
	return dec, n, nil
}

// scanSymbolTail consumes a dotted tail, "(IdentChar|.)*", continuing from
// a word already scanned. It returns the accumulated text (including the
// already-scanned word) and whether any dot was seen (i.e. it is a Symbol
// rather than a bare Identifier).
func (lx *Lexer) scanSymbolTail(word []byte) ([]byte, bool, error) {
	out := word
	sawDot := false
	for {
		b, ok := lx.r.Peek()
		if !ok {
			break
		}
		switch {
		case b == '.':
			out = append(out, '.')
			lx.r.Advance(1)
			sawDot = true
		case b == '\\':
			dec, _, err := lx.decodeEscapeAt()
			if err != nil {
				return nil, false, err
			}
			out = append(out, dec)
		case isIdentStartByte(b) || isDigitByte(b):
			out = append(out, b)
			lx.r.Advance(1)
		default:
			return out, sawDot, nil
		}
	}
	return out, sawDot, nil
}

// ReadLineInfo reads a line-info prefix. It must only be called when the
// current byte is a digit, '~', or ','.
func (lx *Lexer) ReadLineInfo() (Token, error) {
	start := lx.start()

	readDelta := func() (int32, error) {
		neg := false
		if b, ok := lx.r.Peek(); ok && b == '~' {
			neg = true
			lx.r.Advance(1)
		}
		digStart := lx.r.Offset()
		var v int64
		n := 0
		for {
			b, ok := lx.r.Peek()
			if !ok || !isDigitByte(b) {
				break
			}
			v = v*10 + int64(b-'0')
			lx.r.Advance(1)
			n++
		}
		if n == 0 {
			return 0, parseErrorf(BadLineInfo, digStart, "expected digits in line-info")
		}
		if neg {
			v = -v
		}
		return int32(v), nil
	}

	col, err := readDelta()
	if err != nil {
		return noToken, err
	}

	li := LineInfo{Kind: LineInfoCol, Col: col}

	if b, ok := lx.r.Peek(); ok && b == ',' {
		lx.r.Advance(1)
		line, err := readDelta()
		if err != nil {
			return noToken, err
		}
		li.Kind, li.Line = LineInfoColLine, line

		if b, ok := lx.r.Peek(); ok && b == ',' {
			lx.r.Advance(1)
			file, err := lx.scanLineInfoFile()
			if err != nil {
				return noToken, err
			}
			li.Kind, li.File = LineInfoColLineFile, file
		}
	}

	tok := lx.tok(TLineInfo, start, nil)
	tok.LineInfo = li
	return tok, nil
}

// scanLineInfoFile reads the escaped byte-string third field of a
// ColLineFile line-info triple, stopping at ',' '(' or ')' (the only bytes
// that can follow it unescaped).
func (lx *Lexer) scanLineInfoFile() (string, error) {
	var out []byte
	for {
		b, ok := lx.r.Peek()
		if !ok {
			return "", parseErrorf(BadLineInfo, lx.r.Offset(), "unexpected end of input in line-info filename")
		}
		switch b {
		case '(', ')', ',':
			return string(out), nil
		case '\\':
			dec, _, err := lx.decodeEscapeAt()
			if err != nil {
				return "", err
			}
			out = append(out, dec)
		default:
			out = append(out, b)
			lx.r.Advance(1)
		}
	}
}

// ReadComment reads a comment prefix: '#' up to the next unescaped '#'.
func (lx *Lexer) ReadComment() (Token, error) {
	start := lx.start()
	lx.r.Advance(1) // opening '#'
	var out []byte
	for {
		b, ok := lx.r.Peek()
		if !ok {
			return noToken, parseErrorf(UnterminatedComment, start.Offset, "unterminated comment")
		}
		switch b {
		case '#':
			lx.r.Advance(1)
			tok := lx.tok(TComment, start, nil)
			tok.Comment = string(out)
			return tok, nil
		case '\\':
			dec, _, err := lx.decodeEscapeAt()
			if err != nil {
				return noToken, err
			}
			out = append(out, dec)
		default:
			out = append(out, b)
			lx.r.Advance(1)
		}
	}
}

// ReadAtom reads the next atom: an Empty, Identifier, Symbol, SymbolDef,
// number, char, or string. It must only be called once any line-info and
// comment prefix has already been consumed, and the caller has already
// established the current byte is not '(' or ')'.
func (lx *Lexer) ReadAtom() (Token, error) {
	start := lx.start()
	b, ok := lx.r.Peek()
	if !ok {
		return lx.tok(TEOF, start, nil), nil
	}

	switch {
	case b == '.':
		lx.r.Advance(1)
		return lx.tok(TDotEmpty, start, []byte{'.'}), nil

	case b == ':':
		lx.r.Advance(1)
		word, err := lx.scanWordBytes()
		if err != nil {
			return noToken, err
		}
		if len(word) == 0 {
			return noToken, parseErrorf(MalformedSymbol, start.Offset, "expected symbol after ':'")
		}
		text, sawDot, err := lx.scanSymbolTail(word)
		if err != nil {
			return noToken, err
		}
		if !sawDot {
			return noToken, parseErrorf(MalformedSymbol, start.Offset, "symbol definition %q has no dot", text)
		}
		tok := lx.tok(TSymbol, start, nil)
		tok.Text = string(text)
		return tok, nil

	case b == '+' || b == '-':
		return lx.readNumber(start)

	case b == '\'':
		return lx.readChar(start)

	case b == '"':
		return lx.readString(start)

	case isIdentStartByte(b) || b == '\\':
		word, err := lx.scanWordBytes()
		if err != nil {
			return noToken, err
		}
		if len(word) == 0 {
			return noToken, parseErrorf(BadNumber, start.Offset, "unexpected character %q", b)
		}
		text, sawDot, err := lx.scanSymbolTail(word)
		if err != nil {
			return noToken, err
		}
		kind := TIdentifier
		if sawDot {
			kind = TSymbol
		}
		tok := lx.tok(kind, start, nil)
		tok.Text = string(text)
		return tok, nil
	}

	return noToken, parseErrorf(BadNumber, start.Offset, "unexpected character %q", b)
}

func (lx *Lexer) readNumber(start Location) (Token, error) {
	sb, _ := lx.r.Peek()
	sign := 1
	if sb == '-' {
		sign = -1
	}
	lx.r.Advance(1)

	digStart := lx.r.Offset()
	digits := lx.scanDigits()
	if len(digits) == 0 {
		return noToken, parseErrorf(BadNumber, digStart, "expected digits after sign")
	}

	// Unsigned suffix: only valid with an explicit '+' in source, but the
	// grammar doesn't otherwise distinguish; per spec.md §3, UIntLit carries
	// no sign at all, so a 'u' suffix turns this into an unsigned literal
	// regardless of which sign byte introduced it.
	if b, ok := lx.r.Peek(); ok && b == 'u' {
		lx.r.Advance(1)
		tok := lx.tok(TUIntLit, start, nil)
		tok.Digits = digits
		return tok, nil
	}

	var frac, exp string
	hasFrac, hasExp := false, false

	if b, ok := lx.r.Peek(); ok && b == '.' {
		lx.r.Advance(1)
		fracStart := lx.r.Offset()
		frac = lx.scanDigits()
		if len(frac) == 0 {
			return noToken, parseErrorf(BadNumber, fracStart, "expected digits after '.'")
		}
		hasFrac = true
	}

	if b, ok := lx.r.Peek(); ok && (b == 'E' || b == 'e') {
		lx.r.Advance(1)
		var expSign byte = '+'
		if sb2, ok := lx.r.Peek(); ok && (sb2 == '+' || sb2 == '-') {
			expSign = sb2
			lx.r.Advance(1)
		}
		expStart := lx.r.Offset()
		expDigits := lx.scanDigits()
		if len(expDigits) == 0 {
			return noToken, parseErrorf(BadNumber, expStart, "expected digits in exponent")
		}
		exp = string(expSign) + expDigits
		hasExp = true
	}

	if hasFrac || hasExp {
		tok := lx.tok(TFloatLit, start, nil)
		tok.Sign, tok.Digits, tok.Frac, tok.HasFrac, tok.Exp, tok.HasExp = sign, digits, frac, hasFrac, exp, hasExp
		return tok, nil
	}

	tok := lx.tok(TIntLit, start, nil)
	tok.Sign, tok.Digits = sign, digits
	return tok, nil
}

func (lx *Lexer) scanDigits() string {
	var out []byte
	for {
		b, ok := lx.r.Peek()
		if !ok || !isDigitByte(b) {
			break
		}
		out = append(out, b)
		lx.r.Advance(1)
	}
	return string(out)
}

func (lx *Lexer) readChar(start Location) (Token, error) {
	lx.r.Advance(1) // opening quote
	b, ok := lx.r.Peek()
	if !ok {
		return noToken, parseErrorf(UnterminatedChar, start.Offset, "unterminated char literal")
	}
	var value byte
	if b == '\\' {
		dec, _, err := lx.decodeEscapeAt()
		if err != nil {
			return noToken, err
		}
		value = dec
	} else {
		value = b
		lx.r.Advance(1)
	}
	cb, ok := lx.r.Peek()
	if !ok || cb != '\'' {
		return noToken, parseErrorf(UnterminatedChar, start.Offset, "char literal not closed with '\\''")
	}
	lx.r.Advance(1)
	tok := lx.tok(TCharLit, start, nil)
	tok.Char = value
	return tok, nil
}

func (lx *Lexer) readString(start Location) (Token, error) {
	lx.r.Advance(1) // opening quote
	var out []byte
	for {
		b, ok := lx.r.Peek()
		if !ok {
			return noToken, parseErrorf(UnterminatedString, start.Offset, "unterminated string literal")
		}
		switch b {
		case '"':
			lx.r.Advance(1)
			tok := lx.tok(TStringLit, start, nil)
			tok.Text = string(out)
			return tok, nil
		case '\\':
			dec, _, err := lx.decodeEscapeAt()
			if err != nil {
				return noToken, err
			}
			out = append(out, dec)
		default:
			out = append(out, b)
			lx.r.Advance(1)
		}
	}
}

// PeekKind reports, without consuming input, which prefix or node the
// current byte begins: TLineInfo, TComment, TLParen, TRParen, TEOF at end of
// input, or tEmpty for any other byte (meaning "read an atom").
func (lx *Lexer) PeekKind() TokenKind {
	b, ok := lx.r.Peek()
	if !ok {
		return TEOF
	}
	switch {
	case b == '(':
		return TLParen
	case b == ')':
		return TRParen
	case b == '#':
		return TComment
	case isDigitByte(b) || b == '~' || b == ',':
		return TLineInfo
	}
	return tEmpty
}
