// Package nif implements the NIF textual interchange format for compiler
// intermediate representations.
//
// A NIF file encodes one module as an abstract syntax tree built from atoms
// and tagged compound nodes, augmented with source-position diffs, per-node
// comments, directives, and an optional trailing byte-offset index over
// exported symbols. This package is the parser and serializer for that
// format: it turns a byte stream into a tree (Parse) and a tree back into
// bytes (Write), including in-place patching of a reserved `.indexat`
// directive once the final index offset is known.
//
// The package does not interpret tags, resolve module names to filesystem
// paths, or implement the KIF binary variant (see IndexCodec); those are
// left to callers. See package nif/nifx for file loading built on top of
// this package.
package nif // import "go.nifc.dev/nif"
