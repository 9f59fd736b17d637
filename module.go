package nif

// DirectiveKind enumerates the recognized directive set. Unknown directives
// are preserved as DirUnknown, carrying the opaque compound node verbatim,
// so forward compatibility never loses information (spec.md §9).
type DirectiveKind int

const (
	// DirVersion is the magic-cookie version directive, required first.
	DirVersion DirectiveKind = iota
	// DirIndexAt is the byte offset of the trailing .index directive.
	DirIndexAt
	// DirUnusedName is the first free temporary name.
	DirUnusedName
	// DirVendor is an opaque vendor string.
	DirVendor
	// DirPlatform is an opaque platform string.
	DirPlatform
	// DirConfig is an opaque config string.
	DirConfig
	// DirLang scopes tag semantics over wrapped content; nestable.
	DirLang
	// DirDialect is a deprecated alias for DirLang.
	DirDialect
	// DirUnknown preserves an unrecognized directive opaquely.
	DirUnknown
)

// Directive is one recognized or opaque top-of-file compound whose tag
// begins with '.'.
type Directive struct {
	Kind DirectiveKind

	// Version holds the numeric argument of a "(.nif26)"/"(.nif24)"-style
	// version directive; Version == 26 or 24.
	Version int

	// IndexAtOffset is the declared byte offset of ".index" for DirIndexAt.
	//
	// The directive's own source byte span, including its trailing padding,
	// is not recorded: this package never patches a previously-parsed
	// file's on-disk span, only its own freshly-written output within a
	// single Write call (DESIGN.md open-question 5), so there is nothing
	// that would read a stored span.
	IndexAtOffset int

	// Name holds the symbol text for DirUnusedName.
	Name string

	// Str holds the opaque string payload for DirVendor, DirPlatform, and
	// DirConfig.
	Str string

	// LangName holds the scope name for DirLang/DirDialect.
	LangName string
	// LangBody holds the nested nodes wrapped by a DirLang/DirDialect scope.
	LangBody []NodeRef

	// Raw holds the original compound node for DirUnknown, preserved
	// verbatim for round-tripping.
	Raw NodeRef
}

// Visibility is the exported/hidden marker on an Index entry.
type Visibility int

const (
	// Exported is the default visibility for an indexed symbol.
	Exported Visibility = iota
	// Hidden marks a symbol recorded in the index but not for export.
	Hidden
)

func (v Visibility) wireByte() byte {
	if v == Hidden {
		return 'h'
	}
	return 'x'
}

// IndexEntry is one exportable global symbol and the absolute byte offset
// of the opening '(' of the compound node that introduces it.
type IndexEntry struct {
	Visibility Visibility
	Symbol     string
	Offset     int
}

// Index is the trailing directive mapping exportable global symbols to
// their absolute byte offsets. On disk each entry's offset is stored as a
// delta from the previous entry's offset (the first entry's delta is from
// zero); in memory entries always carry absolute offsets.
type Index struct {
	Entries []IndexEntry
}

// Module is the parsed or constructed form of one NIF file: a sequence of
// directives followed by a non-empty sequence of body nodes, with an
// optional trailing index.
type Module struct {
	Arena      *Arena
	Directives []Directive
	Body       []NodeRef
	Index      *Index

	// Suffix is the module suffix used to expand trailing-dot symbols: the
	// leading dot-separated component of the source filename's stem. Empty
	// if the module was parsed without a filename and no suffix was
	// supplied.
	Suffix string

	// Warnings holds non-fatal issues detected during parsing, such as an
	// *MismatchWarning between .indexat and the actual .index location.
	Warnings []error
}

// Directive looks up the first directive of the given kind, if any.
func (m *Module) Directive(kind DirectiveKind) (Directive, bool) {
	for _, d := range m.Directives {
		if d.Kind == kind {
			return d, true
		}
	}
	return Directive{}, false
}

// NewModule returns an empty, constructible Module backed by a fresh Arena.
func NewModule() *Module {
	return &Module{Arena: NewArena()}
}
