package nif

import "testing"

func newLexer(src string) *Lexer {
	return NewLexer(NewReader([]byte(src), "test.nif"))
}

func TestLexerReadAtomIdentifierAndSymbol(t *testing.T) {
	cases := []struct {
		src      string
		wantKind TokenKind
		wantText string
	}{
		{"foo", TIdentifier, "foo"},
		{"foo.0", TSymbol, "foo.0"},
		{"a.b.c", TSymbol, "a.b.c"},
		{".", TDotEmpty, ""},
	}
	for _, c := range cases {
		lx := newLexer(c.src)
		tok, err := lx.ReadAtom()
		if err != nil {
			t.Errorf("ReadAtom(%q) error: %v", c.src, err)
			continue
		}
		if tok.Kind != c.wantKind {
			t.Errorf("ReadAtom(%q).Kind = %v; want %v", c.src, tok.Kind, c.wantKind)
		}
		if tok.Text != c.wantText {
			t.Errorf("ReadAtom(%q).Text = %q; want %q", c.src, tok.Text, c.wantText)
		}
	}
}

func TestLexerReadAtomSymbolDef(t *testing.T) {
	lx := newLexer(":foo.0")
	tok, err := lx.ReadAtom()
	if err != nil {
		t.Fatalf("ReadAtom(:foo.0) error: %v", err)
	}
	if tok.Kind != TSymbol || tok.Text != "foo.0" {
		t.Fatalf("ReadAtom(:foo.0) = %v %q; want TSymbol %q", tok.Kind, tok.Text, "foo.0")
	}
}

func TestLexerReadAtomSymbolDefWithoutDotIsMalformed(t *testing.T) {
	lx := newLexer(":foo")
	if _, err := lx.ReadAtom(); err == nil {
		t.Fatalf("ReadAtom(:foo) succeeded; want MalformedSymbol error")
	}
}

func TestLexerReadAtomNumbers(t *testing.T) {
	lx := newLexer("+42")
	tok, err := lx.ReadAtom()
	if err != nil {
		t.Fatalf("ReadAtom(+42) error: %v", err)
	}
	if tok.Kind != TIntLit || tok.Sign != 1 || tok.Digits != "42" {
		t.Fatalf("ReadAtom(+42) = %+v; want IntLit sign=1 digits=42", tok)
	}

	lx = newLexer("-7u")
	tok, err = lx.ReadAtom()
	if err != nil {
		t.Fatalf("ReadAtom(-7u) error: %v", err)
	}
	if tok.Kind != TUIntLit || tok.Digits != "7" {
		t.Fatalf("ReadAtom(-7u) = %+v; want UIntLit digits=7", tok)
	}

	lx = newLexer("+1.5E+3")
	tok, err = lx.ReadAtom()
	if err != nil {
		t.Fatalf("ReadAtom(+1.5E+3) error: %v", err)
	}
	if tok.Kind != TFloatLit || tok.Digits != "1" || tok.Frac != "5" || tok.Exp != "+3" {
		t.Fatalf("ReadAtom(+1.5E+3) = %+v; want FloatLit 1.5E+3", tok)
	}
}

func TestLexerReadAtomCharAndString(t *testing.T) {
	lx := newLexer(`'a'`)
	tok, err := lx.ReadAtom()
	if err != nil {
		t.Fatalf("ReadAtom('a') error: %v", err)
	}
	if tok.Kind != TCharLit || tok.Char != 'a' {
		t.Fatalf("ReadAtom('a') = %+v; want CharLit 'a'", tok)
	}

	lx = newLexer(`"hi\5Cthere"`)
	tok, err = lx.ReadAtom()
	if err != nil {
		t.Fatalf("ReadAtom string error: %v", err)
	}
	if tok.Kind != TStringLit || tok.Text != "hi\\there" {
		t.Fatalf("ReadAtom string = %+v; want %q", tok, "hi\\there")
	}
}

func TestLexerReadLineInfoForms(t *testing.T) {
	lx := newLexer("5")
	tok, err := lx.ReadLineInfo()
	if err != nil {
		t.Fatalf("ReadLineInfo(5) error: %v", err)
	}
	if tok.LineInfo.Kind != LineInfoCol || tok.LineInfo.Col != 5 {
		t.Fatalf("ReadLineInfo(5) = %+v; want Col(5)", tok.LineInfo)
	}

	lx = newLexer("~2,3")
	tok, err = lx.ReadLineInfo()
	if err != nil {
		t.Fatalf("ReadLineInfo(~2,3) error: %v", err)
	}
	if tok.LineInfo.Kind != LineInfoColLine || tok.LineInfo.Col != -2 || tok.LineInfo.Line != 3 {
		t.Fatalf("ReadLineInfo(~2,3) = %+v; want ColLine(-2, 3)", tok.LineInfo)
	}

	lx = newLexer(`1,2,foo\2Ebar(`)
	tok, err = lx.ReadLineInfo()
	if err != nil {
		t.Fatalf("ReadLineInfo file form error: %v", err)
	}
	if tok.LineInfo.Kind != LineInfoColLineFile || tok.LineInfo.File != "foo.bar" {
		t.Fatalf("ReadLineInfo file form = %+v; want File=foo.bar", tok.LineInfo)
	}
}

func TestLexerReadComment(t *testing.T) {
	lx := newLexer("#hello world#")
	tok, err := lx.ReadComment()
	if err != nil {
		t.Fatalf("ReadComment error: %v", err)
	}
	if tok.Kind != TComment || tok.Comment != "hello world" {
		t.Fatalf("ReadComment = %+v; want Comment=%q", tok, "hello world")
	}
}

func TestLexerPeekKind(t *testing.T) {
	cases := []struct {
		src  string
		want TokenKind
	}{
		{"(foo)", TLParen},
		{")", TRParen},
		{"#c#", TComment},
		{"5,3", TLineInfo},
		{"~1", TLineInfo},
		{"foo", tEmpty},
		{"", TEOF},
	}
	for _, c := range cases {
		lx := newLexer(c.src)
		if got := lx.PeekKind(); got != c.want {
			t.Errorf("PeekKind(%q) = %v; want %v", c.src, got, c.want)
		}
	}
}
