package nif

import "testing"

func mustParse(t *testing.T, src, name string) *Module {
	t.Helper()
	m, err := NewParser().Parse([]byte(src), name)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return m
}

func TestParserRejectsMissingVersion(t *testing.T) {
	_, err := NewParser().Parse([]byte("(stmts)"), "x.nif")
	if err == nil {
		t.Fatalf("Parse without version directive succeeded; want error")
	}
}

func TestParserSimpleBody(t *testing.T) {
	m := mustParse(t, `(.nif26)(stmts (call :write.1.sys "Hello World`+"\\0A"+`"))`, "x.nif")
	if len(m.Body) != 1 {
		t.Fatalf("len(Body) = %d; want 1", len(m.Body))
	}
	stmts := m.Body[0]
	if !stmts.IsCompound() || m.Arena.Tag(stmts) != "stmts" {
		t.Fatalf("Body[0] = %v; want compound tagged stmts", stmts)
	}
	call := m.Arena.Children(stmts)[0]
	if m.Arena.Tag(call) != "call" {
		t.Fatalf("stmts child tag = %q; want call", m.Arena.Tag(call))
	}
	children := m.Arena.Children(call)
	if len(children) != 2 {
		t.Fatalf("call has %d children; want 2", len(children))
	}
	if m.Arena.AtomKind(children[0]) != AtomSymbolDef || m.Arena.Text(children[0]) != "write.1.sys" {
		t.Fatalf("call child 0 = %v %q; want SymbolDef write.1.sys", m.Arena.AtomKind(children[0]), m.Arena.Text(children[0]))
	}
	if m.Arena.AtomKind(children[1]) != AtomString || m.Arena.Text(children[1]) != "Hello World\n" {
		t.Fatalf("call child 1 = %v %q; want String %q", m.Arena.AtomKind(children[1]), m.Arena.Text(children[1]), "Hello World\n")
	}
}

func TestParserTrailingDotExpansion(t *testing.T) {
	m := mustParse(t, `(.nif26)(stmts foo.0.)`, "mod.nif")
	sym := m.Arena.Children(m.Body[0])[0]
	if got := m.Arena.Text(sym); got != "foo.0.mod" {
		t.Fatalf("expanded symbol = %q; want %q", got, "foo.0.mod")
	}
}

func TestParserTrailingDotWithoutSuffixErrors(t *testing.T) {
	_, err := NewParser().ParseSuffix([]byte(`(.nif26)(stmts foo.0.)`), "x.nif", "")
	if err == nil {
		t.Fatalf("Parse with trailing dot and empty suffix succeeded; want error")
	}
}

func TestParserMalformedSymbolSingleDotNonDigitTail(t *testing.T) {
	_, err := NewParser().Parse([]byte(`(.nif26)(stmts foo.bar)`), "x.nif")
	if err == nil {
		t.Fatalf("Parse with invalid local symbol succeeded; want error")
	}
}

func TestParserDirectives(t *testing.T) {
	m := mustParse(t, `(.nif26)(.unusedname tmp.0.m)(.vendor "acme")(stmts)`, "m.nif")
	d, ok := m.Directive(DirUnusedName)
	if !ok || d.Name != "tmp.0.m" {
		t.Fatalf("DirUnusedName = %+v, %v; want Name=tmp.0.m", d, ok)
	}
	d, ok = m.Directive(DirVendor)
	if !ok || d.Str != "acme" {
		t.Fatalf("DirVendor = %+v, %v; want Str=acme", d, ok)
	}
}

func TestParserUnknownDirectivePreservedOpaquely(t *testing.T) {
	m := mustParse(t, `(.nif26)(.future +1 +2 +3)(stmts)`, "m.nif")
	d, ok := m.Directive(DirUnknown)
	if !ok {
		t.Fatalf("expected DirUnknown directive to be preserved")
	}
	if m.Arena.Tag(d.Raw) != ".future" {
		t.Fatalf("DirUnknown.Raw tag = %q; want .future", m.Arena.Tag(d.Raw))
	}
}

func TestParserStrictRejectsUnknownDirective(t *testing.T) {
	p := &Parser{Strict: true}
	_, err := p.Parse([]byte(`(.nif26)(.future +1)(stmts)`), "m.nif")
	if err == nil {
		t.Fatalf("strict Parse with unknown directive succeeded; want error")
	}
}

func TestParserIndexRoundTrip(t *testing.T) {
	src := `(.nif26)(stmts (call :a.0.m))(.index (x a.0.m +30))`
	m := mustParse(t, src, "m.nif")
	if m.Index == nil || len(m.Index.Entries) != 1 {
		t.Fatalf("Index = %+v; want one entry", m.Index)
	}
	e := m.Index.Entries[0]
	if e.Symbol != "a.0.m" || e.Offset != 30 || e.Visibility != Exported {
		t.Fatalf("entry = %+v; want a.0.m +30 Exported", e)
	}
}

func TestParserIndexAtMismatchIsWarningByDefault(t *testing.T) {
	src := `(.nif26)(.indexat +999)(stmts)(.index)`
	m := mustParse(t, src, "m.nif")
	if len(m.Warnings) != 1 {
		t.Fatalf("len(Warnings) = %d; want 1", len(m.Warnings))
	}
	if _, ok := m.Warnings[0].(*MismatchWarning); !ok {
		t.Fatalf("Warnings[0] = %T; want *MismatchWarning", m.Warnings[0])
	}
}

func TestParserIndexAtMismatchIsFatalInStrictMode(t *testing.T) {
	p := &Parser{Strict: true}
	src := `(.nif26)(.indexat +999)(stmts)(.index)`
	_, err := p.Parse([]byte(src), "m.nif")
	if err == nil {
		t.Fatalf("strict Parse with indexat mismatch succeeded; want error")
	}
	le, ok := err.(*LexError)
	if !ok || le.Kind != IndexOffsetMismatch {
		t.Fatalf("error = %v; want *LexError{Kind: IndexOffsetMismatch}", err)
	}
}

func TestModuleSuffix(t *testing.T) {
	cases := []struct{ filename, want string }{
		{"foo.s.nif", "foo"},
		{"mod.nif", "mod"},
		{"/path/to/bar.x.nif", "bar"},
		{"noext", "noext"},
	}
	for _, c := range cases {
		if got := ModuleSuffix(c.filename); got != c.want {
			t.Errorf("ModuleSuffix(%q) = %q; want %q", c.filename, got, c.want)
		}
	}
}
