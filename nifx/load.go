// Package nifx is the external collaborator spec.md carves out for
// module-path resolution and filesystem-driven loading: deriving a module
// suffix from a file's basename, parsing single files and batches of files,
// and rewriting a file in place with a freshly computed index.
package nifx

import (
	"os"

	"go.nifc.dev/nif"
	"golang.org/x/xerrors"
)

// LoadFile opens path, derives its module suffix from the basename, and
// parses it.
func LoadFile(path string) (*nif.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("error loading file: %s: %w", path, err)
	}

	p := nif.NewParser()
	m, err := p.Parse(src, path)
	if err != nil {
		return nil, xerrors.Errorf("error parsing file: %s: %w", path, err)
	}
	return m, nil
}

// Rewrite loads path, calls fn to mutate the parsed module, then writes the
// module back to path in place, computing and patching a fresh .indexat
// offset if opts.WriteIndex is set.
//
// The file is truncated and rewritten wholesale rather than patched
// byte-for-byte: fn is free to change the tree's shape, so no prior on-disk
// span can be assumed to still apply.
func Rewrite(path string, opts nif.WriteOptions, fn func(*nif.Module) error) error {
	m, err := LoadFile(path)
	if err != nil {
		return err
	}

	if err := fn(m); err != nil {
		return xerrors.Errorf("error mutating module: %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return xerrors.Errorf("error opening file for rewrite: %s: %w", path, err)
	}
	defer f.Close()

	wr := nif.NewWriter(opts)
	if err := wr.Write(f, m); err != nil {
		return xerrors.Errorf("error writing file: %s: %w", path, err)
	}
	return nil
}
