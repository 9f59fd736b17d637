package nif

import "testing"

func TestWriterRoundTripNoIndex(t *testing.T) {
	src := `(.nif26)(.vendor "acme")(stmts (call :write.1.sys "hi"))`
	m := mustParse(t, src, "m.nif")

	sink := &sliceWriteSeeker{}
	if err := NewWriter(WriteOptions{}).Write(sink, m); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	reparsed, err := NewParser().ParseSuffix(sink.buf, "m.nif", "m")
	if err != nil {
		t.Fatalf("re-parse of written output failed: %v\noutput: %s", err, sink.buf)
	}
	if len(reparsed.Body) != len(m.Body) {
		t.Fatalf("re-parsed Body has %d nodes; want %d", len(reparsed.Body), len(m.Body))
	}
	if _, ok := reparsed.Directive(DirVendor); !ok {
		t.Fatalf("re-parsed module lost .vendor directive")
	}
}

func TestWriterDeterministic(t *testing.T) {
	src := `(.nif26)(stmts (call :a.0.m +1 -2 'x' "s"))`
	m := mustParse(t, src, "m.nif")

	first := &sliceWriteSeeker{}
	if err := NewWriter(WriteOptions{}).Write(first, m); err != nil {
		t.Fatalf("first Write error: %v", err)
	}
	second := &sliceWriteSeeker{}
	if err := NewWriter(WriteOptions{}).Write(second, m); err != nil {
		t.Fatalf("second Write error: %v", err)
	}
	if string(first.buf) != string(second.buf) {
		t.Fatalf("Write is not deterministic:\n%s\nvs\n%s", first.buf, second.buf)
	}
}

func TestWriterIndexAtPatchRoundTrip(t *testing.T) {
	src := `(.nif26)(stmts (call :a.0.m) (call :b.0.m))`
	m := mustParse(t, src, "m.nif")

	sink := &sliceWriteSeeker{}
	if err := NewWriter(WriteOptions{WriteIndex: true}).Write(sink, m); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	reparsed, err := NewParser().ParseSuffix(sink.buf, "m.nif", "m")
	if err != nil {
		t.Fatalf("re-parse of indexed output failed: %v\noutput: %s", err, sink.buf)
	}
	if len(reparsed.Warnings) != 0 {
		t.Fatalf("re-parsed module has warnings: %v; want none (indexat patch should be exact)", reparsed.Warnings)
	}
	if reparsed.Index == nil || len(reparsed.Index.Entries) != 2 {
		t.Fatalf("Index = %+v; want two entries", reparsed.Index)
	}
	if reparsed.Index.Entries[0].Symbol != "a.0.m" || reparsed.Index.Entries[1].Symbol != "b.0.m" {
		t.Fatalf("Index entries = %+v; want a.0.m, b.0.m in order", reparsed.Index.Entries)
	}
}

func TestWriterRoundTripUInt(t *testing.T) {
	src := `(.nif26)(stmts (call :a.0.m +7u))`
	m := mustParse(t, src, "m.nif")

	sink := &sliceWriteSeeker{}
	if err := NewWriter(WriteOptions{}).Write(sink, m); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	reparsed, err := NewParser().ParseSuffix(sink.buf, "m.nif", "m")
	if err != nil {
		t.Fatalf("re-parse of written output failed: %v\noutput: %s", err, sink.buf)
	}
	call := reparsed.Arena.Children(reparsed.Body[0])[0]
	arg := reparsed.Arena.Children(call)[1]
	if reparsed.Arena.AtomKind(arg) != AtomUInt {
		t.Fatalf("re-parsed argument kind = %v; want AtomUInt (bare digits would lex as line-info instead)", reparsed.Arena.AtomKind(arg))
	}
	if digits := reparsed.Arena.UIntValue(arg); digits != "7" {
		t.Fatalf("re-parsed UInt digits = %q; want %q", digits, "7")
	}
}

func TestWriterIndexesSymbolsInsideLangScope(t *testing.T) {
	src := `(.nif26)(.lang "x" (call :a.0.m))`
	m := mustParse(t, src, "m.nif")

	sink := &sliceWriteSeeker{}
	if err := NewWriter(WriteOptions{WriteIndex: true}).Write(sink, m); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	reparsed, err := NewParser().ParseSuffix(sink.buf, "m.nif", "m")
	if err != nil {
		t.Fatalf("re-parse of indexed output failed: %v\noutput: %s", err, sink.buf)
	}
	if reparsed.Index == nil || len(reparsed.Index.Entries) != 1 {
		t.Fatalf("Index = %+v; want one entry for the SymbolDef inside the .lang scope", reparsed.Index)
	}
	if reparsed.Index.Entries[0].Symbol != "a.0.m" {
		t.Fatalf("Index entry symbol = %q; want a.0.m", reparsed.Index.Entries[0].Symbol)
	}
}

func TestWriterWriteIndexRequiresSeekableSink(t *testing.T) {
	m := mustParse(t, `(.nif26)(stmts (call :a.0.m))`, "m.nif")
	var nonSeeking nonSeekWriter
	err := NewWriter(WriteOptions{WriteIndex: true}).Write(&nonSeeking, m)
	if err != ErrNonSeekableSink {
		t.Fatalf("Write with non-seekable sink and WriteIndex = %v; want ErrNonSeekableSink", err)
	}
}

type nonSeekWriter struct{ buf []byte }

func (w *nonSeekWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
